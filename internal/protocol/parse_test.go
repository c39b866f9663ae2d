package protocol

import (
	"strings"
	"testing"
	"time"

	"lazydotnet/internal/domain"
)

func TestParseTestList(t *testing.T) {
	output := `Microsoft (R) Test Execution Command Line Tool Version 17.8.0 (x64)
Copyright (c) Microsoft Corporation.  All rights reserved.

The following Tests are available:
    Sample.Tests.CalculatorTests.Adds
    Sample.Tests.CalculatorTests.Divides
    Sample.Tests.VersionTests.Parses("1.2.3")
`
	names := ParseTestList(strings.NewReader(output))
	expected := []string{
		"Sample.Tests.CalculatorTests.Adds",
		"Sample.Tests.CalculatorTests.Divides",
		`Sample.Tests.VersionTests.Parses("1.2.3")`,
	}
	if len(names) != len(expected) {
		t.Fatalf("expected %d names, got %d: %v", len(expected), len(names), names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("name %d: expected %q, got %q", i, expected[i], names[i])
		}
	}
}

func TestParseTestList_NoHeader(t *testing.T) {
	if names := ParseTestList(strings.NewReader("random build output\n")); len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}

func feedAll(t *testing.T, lines string) []domain.TestRunResult {
	t.Helper()
	parser := newVSTestRunParser()
	var results []domain.TestRunResult
	for _, line := range strings.Split(lines, "\n") {
		if res := parser.Feed(line); res != nil {
			results = append(results, *res)
		}
	}
	if res := parser.Flush(); res != nil {
		results = append(results, *res)
	}
	return results
}

func TestVSTestRunParser(t *testing.T) {
	transcript := `Starting test execution, please wait...
A total of 1 test files matched the specified pattern.
  Passed Sample.Tests.CalculatorTests.Adds [5 ms]
  Failed Sample.Tests.CalculatorTests.Divides [12 ms]
  Error Message:
   Assert.Equal() Failure
   Expected: 2
   Actual:   3
  Stack Trace:
     at Sample.Tests.CalculatorTests.Divides() in /src/CalculatorTests.cs:line 42
  Standard Output Messages:
   dividing by two

Test Run Failed.
Total tests: 2
     Failed: 1
`
	results := feedAll(t, transcript)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}

	first := results[0]
	if first.Outcome != domain.OutcomePassed || first.ID != "Sample.Tests.CalculatorTests.Adds" {
		t.Errorf("unexpected first result: %+v", first)
	}
	if first.Duration != 5*time.Millisecond {
		t.Errorf("expected 5ms, got %v", first.Duration)
	}

	second := results[1]
	if second.Outcome != domain.OutcomeFailed {
		t.Errorf("expected Failed, got %q", second.Outcome)
	}
	if !strings.Contains(second.ErrorMessage, "Assert.Equal() Failure") {
		t.Errorf("missing error message: %q", second.ErrorMessage)
	}
	if !strings.Contains(second.StackTrace, "CalculatorTests.cs:line 42") {
		t.Errorf("missing stack trace: %q", second.StackTrace)
	}
	if !strings.Contains(second.Output, "dividing by two") {
		t.Errorf("missing output: %q", second.Output)
	}
}

func TestVSTestRunParser_SummaryLineIgnored(t *testing.T) {
	transcript := `  Passed Sample.Tests.T1 [1 ms]
Failed!  - Failed:     1, Passed:     1, Skipped:     0, Total:     2
`
	results := feedAll(t, transcript)
	if len(results) != 1 {
		t.Fatalf("summary line was parsed as a result: %+v", results)
	}
}

func TestVSTestRunParser_NamedArgumentResultLine(t *testing.T) {
	transcript := `  Passed Sample.Tests.VersionTests.Parses(version: 1.2.3) [5 ms]
  Failed Sample.Tests.VersionTests.Parses(version: 9.9.9, strict: true) [2 ms]
`
	results := feedAll(t, transcript)
	if len(results) != 2 {
		t.Fatalf("named-argument result lines were dropped: %+v", results)
	}
	if results[0].ID != "Sample.Tests.VersionTests.Parses(version: 1.2.3)" {
		t.Errorf("unexpected first test name: %q", results[0].ID)
	}
	if results[0].Outcome != domain.OutcomePassed || results[0].Duration != 5*time.Millisecond {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].ID != "Sample.Tests.VersionTests.Parses(version: 9.9.9, strict: true)" {
		t.Errorf("unexpected second test name: %q", results[1].ID)
	}
	if results[1].Outcome != domain.OutcomeFailed {
		t.Errorf("expected Failed, got %q", results[1].Outcome)
	}
}

func TestVSTestRunParser_ProseStartingWithOutcomeWordIgnored(t *testing.T) {
	transcript := `Failed to load extension: /ext/logger.dll
  Passed Sample.Tests.T1 [1 ms]
`
	results := feedAll(t, transcript)
	if len(results) != 1 || results[0].ID != "Sample.Tests.T1" {
		t.Fatalf("prose line was parsed as a result: %+v", results)
	}
}

func TestMTPRunParser(t *testing.T) {
	transcript := `Microsoft.Testing.Platform v1.4.3
passed Sample.Tests.CalculatorTests.Adds (3ms)
failed Sample.Tests.VersionTests.Parses("1.2.3") (1s 12ms)
  Expected version 1.2.3 but found 1.2.4
    at Sample.Tests.VersionTests.Parses(String version)
skipped Sample.Tests.CalculatorTests.Ignored
`
	parser := newMTPRunParser()
	var results []domain.TestRunResult
	for _, line := range strings.Split(transcript, "\n") {
		if res := parser.Feed(line); res != nil {
			results = append(results, *res)
		}
	}
	if res := parser.Flush(); res != nil {
		results = append(results, *res)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(results), results)
	}
	if results[0].Outcome != domain.OutcomePassed || results[0].Duration != 3*time.Millisecond {
		t.Errorf("unexpected first result: %+v", results[0])
	}

	second := results[1]
	if second.Outcome != domain.OutcomeFailed {
		t.Errorf("expected Failed, got %q", second.Outcome)
	}
	if second.Duration != time.Second+12*time.Millisecond {
		t.Errorf("expected 1.012s, got %v", second.Duration)
	}
	if !strings.Contains(second.ErrorMessage, "Expected version 1.2.3") {
		t.Errorf("missing error message: %q", second.ErrorMessage)
	}
	if !strings.Contains(second.StackTrace, "at Sample.Tests.VersionTests.Parses") {
		t.Errorf("missing stack trace: %q", second.StackTrace)
	}

	if results[2].Outcome != domain.OutcomeSkipped {
		t.Errorf("expected Skipped, got %q", results[2].Outcome)
	}
}
