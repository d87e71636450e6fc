package model

import "testing"

func TestSubjectValidateSuccess(t *testing.T) {
	subject := Subject{ID: "subject-1", Name: "Algorithms", Color: "#3b82f6", TotalTopics: 3, CompletedTopics: 1}
	if err := subject.Validate(); err != nil {
		t.Fatalf("expected valid subject, got error: %v", err)
	}
}

func TestSubjectValidateCounterInvariants(t *testing.T) {
	subject := Subject{ID: "subject-1", Name: "Algorithms", TotalTopics: 1, CompletedTopics: 2}
	if err := subject.Validate(); err == nil {
		t.Fatal("expected error when completed exceeds total")
	}

	subject = Subject{ID: "subject-1", Name: "Algorithms", TotalTopics: -1}
	if err := subject.Validate(); err == nil {
		t.Fatal("expected error for negative counts")
	}
}

func TestSubjectValidateRequiredFields(t *testing.T) {
	if err := (Subject{Name: "Algorithms"}).Validate(); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := (Subject{ID: "subject-1"}).Validate(); err == nil {
		t.Fatal("expected error for missing name")
	}
}
