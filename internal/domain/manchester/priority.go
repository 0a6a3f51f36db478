package manchester

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority is a Manchester triage color. The zero value is not a valid
// priority; the five colors are ordered by ascending urgency.
type Priority string

const (
	PriorityBlue   Priority = "azul"
	PriorityGreen  Priority = "verde"
	PriorityYellow Priority = "amarelo"
	PriorityOrange Priority = "laranja"
	PriorityRed    Priority = "vermelho"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityBlue, PriorityGreen, PriorityYellow, PriorityOrange, PriorityRed}

type priorityInfo struct {
	rank   int
	label  string
	color  string
	target time.Duration
}

var priorityTable = map[Priority]priorityInfo{
	PriorityBlue:   {rank: 1, label: "Não urgente", color: "#2563eb", target: 240 * time.Minute},
	PriorityGreen:  {rank: 2, label: "Pouco urgente", color: "#16a34a", target: 120 * time.Minute},
	PriorityYellow: {rank: 3, label: "Urgente", color: "#eab308", target: 60 * time.Minute},
	PriorityOrange: {rank: 4, label: "Muito urgente", color: "#ea580c", target: 10 * time.Minute},
	PriorityRed:    {rank: 5, label: "Emergência", color: "#dc2626", target: 0},
}

// ParsePriority converts a wire name into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	_, ok := priorityTable[p]
	return ok
}

// Rank returns 1 (azul) through 5 (vermelho), or 0 for an invalid value.
func (p Priority) Rank() int {
	return priorityTable[p].rank
}

// Less reports whether p is less urgent than o.
func (p Priority) Less(o Priority) bool {
	return p.Rank() < o.Rank()
}

func (p Priority) Label() string {
	if info, ok := priorityTable[p]; ok {
		return info.label
	}
	return string(p)
}

func (p Priority) Color() string {
	return priorityTable[p].color
}

// TargetWait is the protocol's advertised maximum wait for the color. It is
// descriptive only: the SLA evaluator applies a single fixed ceiling.
func (p Priority) TargetWait() time.Duration {
	return priorityTable[p].target
}

func (p Priority) String() string {
	return string(p)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("priority must be a string: %w", err)
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// clamp bounds p to [floor, ceil] by rank.
func clamp(p, floor, ceil Priority) Priority {
	if p.Less(floor) {
		return floor
	}
	if ceil.Less(p) {
		return ceil
	}
	return p
}

func maxPriority(a, b Priority) Priority {
	if a.Less(b) {
		return b
	}
	return a
}
