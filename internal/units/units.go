package units

import (
	"errors"
	"fmt"

	"restopos/backend/internal/domain"
)

var ErrIncompatibleUnits = errors.New("incompatible units")

type group int

const (
	groupMass group = iota + 1
	groupVolume
	groupCount
)

type unitInfo struct {
	group group
	// base is the size of one unit in the smallest unit of its group.
	base float64
}

var table = map[domain.Unit]unitInfo{
	domain.UnitGram:       {group: groupMass, base: 1},
	domain.UnitKilogram:   {group: groupMass, base: 1000},
	domain.UnitMillilitre: {group: groupVolume, base: 1},
	domain.UnitLitre:      {group: groupVolume, base: 1000},
	domain.UnitPiece:      {group: groupCount, base: 1},
}

// Convert expresses qty measured in from as a quantity of to. Converting a
// unit to itself always succeeds, even for units it does not know.
func Convert(qty float64, from, to domain.Unit) (float64, error) {
	if from == to {
		return qty, nil
	}
	src, okFrom := table[from]
	dst, okTo := table[to]
	if !okFrom || !okTo || src.group != dst.group {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, from, to)
	}
	return qty * src.base / dst.base, nil
}

// Compatible reports whether Convert would succeed between the two units.
func Compatible(from, to domain.Unit) bool {
	_, err := Convert(0, from, to)
	return err == nil
}
