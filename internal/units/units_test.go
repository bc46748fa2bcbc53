package units

import (
	"errors"
	"math"
	"testing"

	"restopos/backend/internal/domain"
)

func TestConvertWithinGroup(t *testing.T) {
	got, err := Convert(1000, domain.UnitGram, domain.UnitKilogram)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 kg, got %v", got)
	}

	got, err = Convert(1.5, domain.UnitLitre, domain.UnitMillilitre)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if got != 1500 {
		t.Fatalf("expected 1500 ml, got %v", got)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	pairs := [][2]domain.Unit{
		{domain.UnitGram, domain.UnitKilogram},
		{domain.UnitMillilitre, domain.UnitLitre},
		{domain.UnitPiece, domain.UnitPiece},
	}
	for _, qty := range []float64{0.001, 1, 37.25, 12345.678} {
		for _, p := range pairs {
			there, err := Convert(qty, p[0], p[1])
			if err != nil {
				t.Fatalf("convert %s->%s failed: %v", p[0], p[1], err)
			}
			back, err := Convert(there, p[1], p[0])
			if err != nil {
				t.Fatalf("convert %s->%s failed: %v", p[1], p[0], err)
			}
			if math.Abs(back-qty) > 1e-9*math.Max(1, qty) {
				t.Fatalf("round trip %v %s drifted to %v", qty, p[0], back)
			}
		}
	}
}

func TestConvertAcrossGroupsFails(t *testing.T) {
	_, err := Convert(10, domain.UnitGram, domain.UnitMillilitre)
	if !errors.Is(err, ErrIncompatibleUnits) {
		t.Fatalf("expected ErrIncompatibleUnits, got %v", err)
	}
	if _, err := Convert(1, domain.UnitPiece, domain.UnitKilogram); !errors.Is(err, ErrIncompatibleUnits) {
		t.Fatalf("expected ErrIncompatibleUnits for pcs->kg, got %v", err)
	}
}

func TestConvertUnknownUnit(t *testing.T) {
	if _, err := Convert(1, domain.Unit("oz"), domain.UnitGram); !errors.Is(err, ErrIncompatibleUnits) {
		t.Fatalf("expected ErrIncompatibleUnits for unknown unit, got %v", err)
	}
	got, err := Convert(3, domain.Unit("oz"), domain.Unit("oz"))
	if err != nil || got != 3 {
		t.Fatalf("identity on unknown unit should pass through, got %v %v", got, err)
	}
}

func TestCompatible(t *testing.T) {
	if !Compatible(domain.UnitKilogram, domain.UnitGram) {
		t.Fatalf("kg and g should be compatible")
	}
	if Compatible(domain.UnitLitre, domain.UnitGram) {
		t.Fatalf("l and g should not be compatible")
	}
}
