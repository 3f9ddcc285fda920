package vin

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	v, err := Parse("1HGCM82633A004352")
	if err != nil {
		t.Fatalf("expected valid VIN, got %v", err)
	}
	if v.WMI != "1HG" {
		t.Errorf("expected WMI 1HG, got %s", v.WMI)
	}
	if v.VDS != "CM8263" {
		t.Errorf("expected VDS CM8263, got %s", v.VDS)
	}
	if v.ModelYear != 2003 {
		t.Errorf("expected model year 2003, got %d", v.ModelYear)
	}
	if v.SerialNumber != "004352" {
		t.Errorf("expected serial 004352, got %s", v.SerialNumber)
	}
}

func TestParse_LowercaseAccepted(t *testing.T) {
	v, err := Parse("1hgcm82633a004352")
	if err != nil {
		t.Fatalf("expected lowercase VIN to parse, got %v", err)
	}
	if v.Raw != "1HGCM82633A004352" {
		t.Errorf("expected normalized raw, got %s", v.Raw)
	}
}

func TestParse_AllOnes(t *testing.T) {
	// Weighted sum of seventeen 1s is 89, 89 mod 11 = 1 = the check digit.
	if _, err := Parse("11111111111111111"); err != nil {
		t.Errorf("expected valid VIN, got %v", err)
	}
}

func TestParse_WrongLength(t *testing.T) {
	_, err := Parse("1HGCM82633A00435")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestParse_IllegalCharacter(t *testing.T) {
	// 'I' is never valid in a VIN.
	_, err := Parse("IHGCM82633A004352")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestParse_CheckDigitMismatch(t *testing.T) {
	// Last serial digit altered; check digit no longer matches.
	_, err := Parse("1HGCM82633A004353")
	if !errors.Is(err, ErrCheckDigit) {
		t.Errorf("expected ErrCheckDigit, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}
