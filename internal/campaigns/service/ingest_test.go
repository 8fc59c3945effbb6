package service

import (
	"strings"
	"testing"

	"campaign_audio_backend/platform/apperr"
)

func TestParseLeads_PhoneColumnAliases(t *testing.T) {
	for _, header := range []string{"phone", "Phone Number", "PHONE_NUMBER"} {
		csv := header + ",name\n+14155552671,Alice\n"
		leads, err := ParseLeads(strings.NewReader(csv), "spring", "g1", "US")
		if err != nil {
			t.Fatalf("header %q: unexpected error: %v", header, err)
		}
		if len(leads) != 1 {
			t.Fatalf("header %q: expected 1 lead, got %d", header, len(leads))
		}
		if leads[0].PhoneNumber != "+14155552671" {
			t.Fatalf("header %q: unexpected phone %s", header, leads[0].PhoneNumber)
		}
	}
}

func TestParseLeads_MissingPhoneColumn(t *testing.T) {
	csv := "name,city\nAlice,Berlin\n"
	_, err := ParseLeads(strings.NewReader(csv), "spring", "", "US")
	if err == nil {
		t.Fatal("expected error for missing phone column")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseLeads_DedupKeepsLastRow(t *testing.T) {
	csv := "phone,name\n4155552671,First\n(415) 555-2671,Second\n"
	leads, err := ParseLeads(strings.NewReader(csv), "spring", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead after dedup, got %d", len(leads))
	}
	if leads[0].LeadData["name"] != "Second" {
		t.Fatalf("expected last row to win, got %v", leads[0].LeadData["name"])
	}
}

func TestParseLeads_SkipsRowsWithoutPhone(t *testing.T) {
	csv := "phone,name\n,NoPhone\n+14155552671,Alice\n"
	leads, err := ParseLeads(strings.NewReader(csv), "spring", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}
}

func TestParseLeads_AllColumnsCarriedIntoLeadData(t *testing.T) {
	csv := "phone,name,city\n+14155552671,Alice,Berlin\n"
	leads, err := ParseLeads(strings.NewReader(csv), "spring", "g7", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := leads[0].LeadData
	if data["name"] != "Alice" || data["city"] != "Berlin" {
		t.Fatalf("lead data missing columns: %v", data)
	}
	if _, ok := data["phone"]; !ok {
		t.Fatal("phone column must pass through into lead data")
	}
	if leads[0].GenerationNo == nil || *leads[0].GenerationNo != "g7" {
		t.Fatal("generation tag not carried")
	}
}

func TestParseLeads_EmptyCellsBecomeNulls(t *testing.T) {
	csv := "phone,name,city\n+14155552671,Alice,  \n"
	leads, err := ParseLeads(strings.NewReader(csv), "spring", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := leads[0].LeadData
	value, ok := data["city"]
	if !ok {
		t.Fatal("empty cell must still appear in lead data")
	}
	if value != nil {
		t.Fatalf("empty cell must be stored as null, got %#v", value)
	}
	if data["name"] != "Alice" {
		t.Fatalf("non-empty cell mangled: %v", data["name"])
	}
}

func TestParseLeads_EmptyFile(t *testing.T) {
	if _, err := ParseLeads(strings.NewReader(""), "spring", "", "US"); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestParseLeads_NoUsableRows(t *testing.T) {
	csv := "phone,name\n,Alice\n,Bob\n"
	if _, err := ParseLeads(strings.NewReader(csv), "spring", "", "US"); err == nil {
		t.Fatal("expected error when no row has a phone")
	}
}
