package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownConstituent is returned when a constituent name is not in the catalog.
var ErrUnknownConstituent = errors.New("unknown constituent")

// Constituent identifies a tidal wave. Values are dense indices into the
// catalog, usable as array subscripts.
type Constituent uint8

// Catalog, in alphabetical order.
const (
	TwoMK3 Constituent = iota
	TwoMK6
	TwoMN2
	TwoMN6
	TwoMS2
	TwoMS6
	TwoN2
	TwoQ1
	TwoSM2
	TwoSM6
	Alpha2
	Beta1
	Beta2
	Chi1
	Delta2
	Eps2
	Eta2
	Gamma2
	J1
	K1
	K2
	L2
	Lambda2
	M1
	M13
	M2
	M3
	M4
	M6
	M8
	Mf
	MK3
	MK4
	MKS2
	Mm
	MN4
	MO3
	Mqm
	MS4
	MSf
	MSK6
	MSm
	MSN2
	MSN6
	MSqm
	MStm
	Mtm
	Mu2
	N2
	N4
	Node
	Nu2
	O1
	OO1
	P1
	Phi1
	Pi1
	Psi1
	Q1
	R2
	R4
	Rho1
	S1
	S2
	S4
	S6
	Sa
	Sa1
	Sigma1
	SK4
	SN4
	SO1
	Ssa
	Sta
	T2
	Tau1
	Theta1
	Ups1

	// NumConstituents is the size of the catalog.
	NumConstituents int = iota
)

// Species classifies a constituent by the band it contributes to.
type Species uint8

const (
	// ShortPeriod covers diurnal, semidiurnal and shallow-water waves. They
	// make up the ocean tide.
	ShortPeriod Species = iota
	// LongPeriod covers waves with periods of a fortnight or longer.
	LongPeriod
)

func (s Species) String() string {
	if s == LongPeriod {
		return "long-period"
	}
	return "short-period"
}

// Doodson is an extended Doodson number: multipliers of tau, s, h, p, N', ps
// followed by the multiplier of 90 degrees.
type Doodson [7]int8

type wave struct {
	name    string
	doodson Doodson
	species Species
}

var catalog = [NumConstituents]wave{
	TwoMK3:  {"2MK3", Doodson{3, -1, 0, 0, 0, 0, 3}, ShortPeriod},
	TwoMK6:  {"2MK6", Doodson{6, 2, 0, 0, 0, 0, 0}, ShortPeriod},
	TwoMN2:  {"2MN2", Doodson{2, 1, 0, -1, 0, 0, 0}, ShortPeriod},
	TwoMN6:  {"2MN6", Doodson{6, -1, 0, 1, 0, 0, 0}, ShortPeriod},
	TwoMS2:  {"2MS2", Doodson{2, -2, 2, 0, 0, 0, 0}, ShortPeriod},
	TwoMS6:  {"2MS6", Doodson{6, 2, -2, 0, 0, 0, 0}, ShortPeriod},
	TwoN2:   {"2N2", Doodson{2, -2, 0, 2, 0, 0, 0}, ShortPeriod},
	TwoQ1:   {"2Q1", Doodson{1, -3, 0, 2, 0, 0, 3}, ShortPeriod},
	TwoSM2:  {"2SM2", Doodson{2, 4, -4, 0, 0, 0, 0}, ShortPeriod},
	TwoSM6:  {"2SM6", Doodson{6, 4, -4, 0, 0, 0, 0}, ShortPeriod},
	Alpha2:  {"Alpha2", Doodson{2, 0, -1, 0, 0, 1, 2}, ShortPeriod},
	Beta1:   {"Beta1", Doodson{1, 0, -2, 1, 0, 0, 1}, ShortPeriod},
	Beta2:   {"Beta2", Doodson{2, 0, 1, 0, 0, -1, 0}, ShortPeriod},
	Chi1:    {"Chi1", Doodson{1, 0, 2, -1, 0, 0, 1}, ShortPeriod},
	Delta2:  {"Delta2", Doodson{2, 0, 2, 0, 0, 0, 0}, ShortPeriod},
	Eps2:    {"Eps2", Doodson{2, -3, 2, 1, 0, 0, 0}, ShortPeriod},
	Eta2:    {"Eta2", Doodson{2, 3, 0, -1, 0, 0, 0}, ShortPeriod},
	Gamma2:  {"Gamma2", Doodson{2, 0, -2, 2, 0, 0, 2}, ShortPeriod},
	J1:      {"J1", Doodson{1, 2, 0, -1, 0, 0, 1}, ShortPeriod},
	K1:      {"K1", Doodson{1, 1, 0, 0, 0, 0, 1}, ShortPeriod},
	K2:      {"K2", Doodson{2, 2, 0, 0, 0, 0, 0}, ShortPeriod},
	L2:      {"L2", Doodson{2, 1, 0, -1, 0, 0, 2}, ShortPeriod},
	Lambda2: {"Lambda2", Doodson{2, 1, -2, 1, 0, 0, 2}, ShortPeriod},
	M1:      {"M1", Doodson{1, 0, 0, 1, 0, 0, 1}, ShortPeriod},
	M13:     {"M13", Doodson{1, 0, 0, 0, 0, 0, 2}, ShortPeriod},
	M2:      {"M2", Doodson{2, 0, 0, 0, 0, 0, 0}, ShortPeriod},
	M3:      {"M3", Doodson{3, 0, 0, 0, 0, 0, 2}, ShortPeriod},
	M4:      {"M4", Doodson{4, 0, 0, 0, 0, 0, 0}, ShortPeriod},
	M6:      {"M6", Doodson{6, 0, 0, 0, 0, 0, 0}, ShortPeriod},
	M8:      {"M8", Doodson{8, 0, 0, 0, 0, 0, 0}, ShortPeriod},
	Mf:      {"Mf", Doodson{0, 2, 0, 0, 0, 0, 0}, LongPeriod},
	MK3:     {"MK3", Doodson{3, 1, 0, 0, 0, 0, 1}, ShortPeriod},
	MK4:     {"MK4", Doodson{4, 2, 0, 0, 0, 0, 0}, ShortPeriod},
	MKS2:    {"MKS2", Doodson{2, 0, 2, 0, 0, 0, 0}, ShortPeriod},
	Mm:      {"Mm", Doodson{0, 1, 0, -1, 0, 0, 0}, LongPeriod},
	MN4:     {"MN4", Doodson{4, -1, 0, 1, 0, 0, 0}, ShortPeriod},
	MO3:     {"MO3", Doodson{3, -1, 0, 0, 0, 0, 3}, ShortPeriod},
	Mqm:     {"Mqm", Doodson{0, 4, 0, -2, 0, 0, 0}, LongPeriod},
	MS4:     {"MS4", Doodson{4, 2, -2, 0, 0, 0, 0}, ShortPeriod},
	MSf:     {"MSf", Doodson{0, 2, -2, 0, 0, 0, 0}, LongPeriod},
	MSK6:    {"MSK6", Doodson{6, 4, -2, 0, 0, 0, 0}, ShortPeriod},
	MSm:     {"MSm", Doodson{0, 1, -2, 1, 0, 0, 0}, LongPeriod},
	MSN2:    {"MSN2", Doodson{2, 3, -2, -1, 0, 0, 0}, ShortPeriod},
	MSN6:    {"MSN6", Doodson{6, 1, -2, 1, 0, 0, 0}, ShortPeriod},
	MSqm:    {"MSqm", Doodson{0, 4, -2, 0, 0, 0, 0}, LongPeriod},
	MStm:    {"MStm", Doodson{0, 3, -2, 1, 0, 0, 0}, LongPeriod},
	Mtm:     {"Mtm", Doodson{0, 3, 0, -1, 0, 0, 0}, LongPeriod},
	Mu2:     {"Mu2", Doodson{2, -2, 2, 0, 0, 0, 0}, ShortPeriod},
	N2:      {"N2", Doodson{2, -1, 0, 1, 0, 0, 0}, ShortPeriod},
	N4:      {"N4", Doodson{4, -2, 0, 2, 0, 0, 0}, ShortPeriod},
	Node:    {"Node", Doodson{0, 0, 0, 0, 1, 0, 2}, LongPeriod},
	Nu2:     {"Nu2", Doodson{2, -1, 2, -1, 0, 0, 0}, ShortPeriod},
	O1:      {"O1", Doodson{1, -1, 0, 0, 0, 0, 3}, ShortPeriod},
	OO1:     {"OO1", Doodson{1, 3, 0, 0, 0, 0, 1}, ShortPeriod},
	P1:      {"P1", Doodson{1, 1, -2, 0, 0, 0, 3}, ShortPeriod},
	Phi1:    {"Phi1", Doodson{1, 1, 2, 0, 0, 0, 1}, ShortPeriod},
	Pi1:     {"Pi1", Doodson{1, 1, -3, 0, 0, 1, 3}, ShortPeriod},
	Psi1:    {"Psi1", Doodson{1, 1, 1, 0, 0, -1, 1}, ShortPeriod},
	Q1:      {"Q1", Doodson{1, -2, 0, 1, 0, 0, 3}, ShortPeriod},
	R2:      {"R2", Doodson{2, 2, -1, 0, 0, -1, 2}, ShortPeriod},
	R4:      {"R4", Doodson{4, 4, -3, 0, 0, 0, 0}, ShortPeriod},
	Rho1:    {"Rho1", Doodson{1, -2, 2, -1, 0, 0, 3}, ShortPeriod},
	S1:      {"S1", Doodson{1, 1, -1, 0, 0, 0, 2}, ShortPeriod},
	S2:      {"S2", Doodson{2, 2, -2, 0, 0, 0, 0}, ShortPeriod},
	S4:      {"S4", Doodson{4, 4, -4, 0, 0, 0, 0}, ShortPeriod},
	S6:      {"S6", Doodson{6, 6, -6, 0, 0, 0, 0}, ShortPeriod},
	Sa:      {"Sa", Doodson{0, 0, 1, 0, 0, 0, 0}, LongPeriod},
	Sa1:     {"Sa1", Doodson{0, 0, 1, 0, 0, -1, 0}, LongPeriod},
	Sigma1:  {"Sigma1", Doodson{1, -3, 2, 0, 0, 0, 3}, ShortPeriod},
	SK4:     {"SK4", Doodson{4, 4, -2, 0, 0, 0, 0}, ShortPeriod},
	SN4:     {"SN4", Doodson{4, 1, -2, 1, 0, 0, 0}, ShortPeriod},
	SO1:     {"SO1", Doodson{1, 3, -2, 0, 0, 0, 1}, ShortPeriod},
	Ssa:     {"Ssa", Doodson{0, 0, 2, 0, 0, 0, 0}, LongPeriod},
	Sta:     {"Sta", Doodson{0, 0, 3, 0, 0, 0, 0}, LongPeriod},
	T2:      {"T2", Doodson{2, 2, -3, 0, 0, 1, 0}, ShortPeriod},
	Tau1:    {"Tau1", Doodson{1, -1, 2, 0, 0, 0, 1}, ShortPeriod},
	Theta1:  {"Theta1", Doodson{1, 2, -2, 1, 0, 0, 1}, ShortPeriod},
	Ups1:    {"Ups1", Doodson{1, 4, 0, -1, 0, 0, 1}, ShortPeriod},
}

// Alternative spellings found in model files and the literature.
var aliases = map[string]Constituent{
	"sig1": Sigma1,
	"bet1": Beta1,
	"the1": Theta1,
	"alp2": Alpha2,
	"gam2": Gamma2,
	"del2": Delta2,
	"lam2": Lambda2,
	"msq":  MSqm,
	"mq":   Mqm,
	"mst":  MStm,
	"mt":   Mtm,
}

var byName = func() map[string]Constituent {
	m := make(map[string]Constituent, NumConstituents+len(aliases))
	for i := range catalog {
		m[strings.ToLower(catalog[i].name)] = Constituent(i)
	}
	for k, v := range aliases {
		m[k] = v
	}
	return m
}()

// speeds caches the angular speed of every constituent in degrees per hour.
var speeds = func() [NumConstituents]float64 {
	var out [NumConstituents]float64
	for i := range catalog {
		out[i] = TidalFrequency(catalog[i].doodson)
	}
	return out
}()

// ParseConstituent resolves a case-insensitive name or alias.
func ParseConstituent(name string) (Constituent, error) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownConstituent, name)
	}
	return c, nil
}

// Valid reports whether c is a catalog entry.
func (c Constituent) Valid() bool {
	return int(c) < NumConstituents
}

// Name returns the conventional name, e.g. "M2".
func (c Constituent) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("Constituent(%d)", c)
	}
	return catalog[c].name
}

func (c Constituent) String() string {
	return c.Name()
}

// Doodson returns the extended Doodson number.
func (c Constituent) Doodson() Doodson {
	return catalog[c].doodson
}

// Species returns the band of c.
func (c Constituent) Species() Species {
	return catalog[c].species
}

// SpeedDegPerHr returns the angular speed in degrees per hour.
func (c Constituent) SpeedDegPerHr() float64 {
	return speeds[c]
}

// AllConstituents returns the catalog in index order.
func AllConstituents() []Constituent {
	out := make([]Constituent, NumConstituents)
	for i := range out {
		out[i] = Constituent(i)
	}
	return out
}

// Set is a bit set of constituents.
type Set [2]uint64

// NewSet returns a set holding cs.
func NewSet(cs ...Constituent) Set {
	var s Set
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

// Add inserts c.
func (s *Set) Add(c Constituent) {
	s[c/64] |= 1 << (c % 64)
}

// Has reports whether c is in the set.
func (s Set) Has(c Constituent) bool {
	return s[c/64]&(1<<(c%64)) != 0
}

// HasAll reports whether every cs is in the set.
func (s Set) HasAll(cs ...Constituent) bool {
	for _, c := range cs {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for i := 0; i < NumConstituents; i++ {
		if s.Has(Constituent(i)) {
			n++
		}
	}
	return n
}

// Slice returns the members in index order.
func (s Set) Slice() []Constituent {
	out := make([]Constituent, 0, s.Len())
	for i := 0; i < NumConstituents; i++ {
		if s.Has(Constituent(i)) {
			out = append(out, Constituent(i))
		}
	}
	return out
}
