package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

type Restaurant struct {
	Base
	Name                 string       `json:"name" gorm:"not null"`
	Type                 string       `json:"type"`
	SuggestedPeople      PartySize    `json:"suggestedPeople" gorm:"embedded"`
	Phone                string       `json:"phone"`
	Address              string       `json:"address"`
	BusinessDays         BusinessDays `json:"businessDays" gorm:"type:text"`
	NotSuitableForSummer bool         `json:"notSuitableForSummer"`
	NotSuitableForWinter bool         `json:"notSuitableForWinter"`
	NotSuitableForRainy  bool         `json:"notSuitableForRainy"`
	Distance             float64      `json:"distance"`
	Latitude             *float64     `json:"latitude"`
	Longitude            *float64     `json:"longitude"`
}

// PartySize is the suggested-party-size band of a restaurant. Two input
// shapes exist: the legacy form, a bare number acting as an inclusive
// upper bound, and the string form "min-max", "min+" or "n". Legacy
// values keep their cap semantics across storage round trips.
type PartySize struct {
	Spec   string `json:"-" gorm:"column:suggested_people"`
	Legacy bool   `json:"-" gorm:"column:legacy_people_cap"`
}

var (
	bandRange = regexp.MustCompile(`^(\d+)-(\d+)$`)
	bandOpen  = regexp.MustCompile(`^(\d+)\+$`)
	bandExact = regexp.MustCompile(`^(\d+)$`)
)

func (p *PartySize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = PartySize{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PartySize{Spec: s}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("suggestedPeople must be a number or a band string")
	}
	*p = PartySize{Spec: strconv.Itoa(n), Legacy: true}
	return nil
}

func (p PartySize) MarshalJSON() ([]byte, error) {
	if p.Legacy {
		return []byte(p.Spec), nil
	}
	return json.Marshal(p.Spec)
}

// Admits reports whether the band accepts a party of the given size.
// Malformed band strings never match.
func (p PartySize) Admits(people int) bool {
	if p.Legacy {
		limit, err := strconv.Atoi(p.Spec)
		if err != nil {
			return false
		}
		return people <= limit
	}
	if m := bandRange.FindStringSubmatch(p.Spec); m != nil {
		min, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		return people >= min && people <= max
	}
	if m := bandOpen.FindStringSubmatch(p.Spec); m != nil {
		min, _ := strconv.Atoi(m[1])
		return people >= min
	}
	if m := bandExact.FindStringSubmatch(p.Spec); m != nil {
		n, _ := strconv.Atoi(m[1])
		return people == n
	}
	return false
}

// BusinessDays is the set of weekday tokens a restaurant is open on.
// It is stored as a JSON array string; nothing outside this type may
// assume that encoding.
type BusinessDays []string

func (d BusinessDays) Value() (driver.Value, error) {
	if d == nil {
		d = BusinessDays{}
	}
	b, err := json.Marshal([]string(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *BusinessDays) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported business days column type %T", value)
	}
	if len(raw) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(d))
}

func (d BusinessDays) Contains(day string) bool {
	for _, v := range d {
		if v == day {
			return true
		}
	}
	return false
}
