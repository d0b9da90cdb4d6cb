package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON scalar that upstream sends as a number, a numeric
// string, or null.
type Number struct {
	text  string
	valid bool
}

// NumberOf builds a present Number from its textual form.
func NumberOf(text string) Number {
	text = strings.TrimSpace(text)
	return Number{text: text, valid: text != ""}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberOf(s)
		return nil
	}
	*n = NumberOf(string(b))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(n.text)), nil
}

// String returns the value as sent, or "" when absent.
func (n Number) String() string { return n.text }

// Present reports whether a non-empty value was supplied.
func (n Number) Present() bool { return n.valid }

// Int returns the value as an integer. Integral floats such as "3.0" are
// accepted; anything else is an error.
func (n Number) Int() (int, bool, error) {
	if !n.valid {
		return 0, false, nil
	}
	if v, err := strconv.Atoi(n.text); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(n.text, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not an integer: %q", n.text)
	}
	return int(f), true, nil
}

// Float returns the value as a float64.
func (n Number) Float() (float64, bool, error) {
	if !n.valid {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(n.text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a number: %q", n.text)
	}
	return f, true, nil
}

// RawAthlete is the athlete block of a ranking entry.
type RawAthlete struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	DOB         *string `json:"dob"`
	Nationality *string `json:"nationality"`
	Image       *string `json:"image"`
}

// RawEvent is the event block nested in an event division.
type RawEvent struct {
	Name *string `json:"name"`
	Date *string `json:"date"`
}

// RawEventDivision wraps the event of a result.
type RawEventDivision struct {
	Event *RawEvent `json:"event"`
}

// RawResult is one event result inside a ranking entry.
type RawResult struct {
	Place         Number            `json:"place"`
	Points        Number            `json:"points"`
	EventDivision *RawEventDivision `json:"eventDivision"`
}

// RawRanking is one athlete's ranking entry in a series division.
type RawRanking struct {
	Athlete *RawAthlete `json:"athlete"`
	Place   Number      `json:"place"`
	Points  Number      `json:"points"`
	Results []RawResult `json:"results"`
}

// UnmarshalJSON implements json.Unmarshaler. A result that cannot be
// decoded is kept as an empty RawResult so the parser drops it on its own
// instead of the whole ranking entry failing.
func (r *RawRanking) UnmarshalJSON(b []byte) error {
	type plain RawRanking
	var aux struct {
		plain
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawRanking(aux.plain)
	if aux.Results == nil {
		return nil
	}
	r.Results = make([]RawResult, 0, len(aux.Results))
	for _, raw := range aux.Results {
		var res RawResult
		if err := json.Unmarshal(raw, &res); err != nil {
			res = RawResult{}
		}
		r.Results = append(r.Results, res)
	}
	return nil
}

// DivisionRankings holds the ranking entries of one division, in upstream order.
type DivisionRankings struct {
	Name     string       `json:"name"`
	Rankings []RawRanking `json:"rankings"`
}

// SeriesRankings is the fetch result for one series across its divisions.
type SeriesRankings struct {
	SeriesID   string             `json:"series_id"`
	SeriesName string             `json:"series_name"`
	Divisions  []DivisionRankings `json:"divisions"`
}

// AthleteIDs lists the distinct athlete ids of all divisions in first-seen order.
func (s *SeriesRankings) AthleteIDs() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, d := range s.Divisions {
		for _, r := range d.Rankings {
			if r.Athlete == nil || r.Athlete.ID == "" {
				continue
			}
			if _, ok := seen[r.Athlete.ID]; ok {
				continue
			}
			seen[r.Athlete.ID] = struct{}{}
			ids = append(ids, r.Athlete.ID)
		}
	}
	return ids
}
