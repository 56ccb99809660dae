package selector

import (
	"errors"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/dandanshan/meal-selection-app/model"
)

// ErrNoMatch means no restaurant in the catalog satisfies the criteria.
var ErrNoMatch = errors.New("no restaurant meets current conditions")

var weekdayTokens = [...]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// Criteria are the conditions of one selection request. Radius and the
// caller coordinates are optional; distance is recomputed from
// coordinates only when both sides have them.
type Criteria struct {
	PeopleCount int
	IsRaining   bool
	Weather     string
	Temperature float64
	Radius      *float64
	Latitude    *float64
	Longitude   *float64
}

// Selector picks one eligible restaurant at random, never repeating a
// restaurant already chosen in the current Sunday-to-Saturday week.
// Rand and Now are swappable so tests can pin both.
type Selector struct {
	DB   *gorm.DB
	Rand *rand.Rand
	Now  func() time.Time
}

func New(db *gorm.DB) *Selector {
	return &Selector{
		DB:   db,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:  time.Now,
	}
}

// WeekWindow returns the half-open window [most recent Sunday at local
// midnight, +7 days) containing now.
func WeekWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start = midnight.AddDate(0, 0, -int(now.Weekday()))
	end = start.AddDate(0, 0, 7)
	return start, end
}

// Select runs the weekly-exclusion draw. It only reads; nothing is
// persisted until the caller confirms the pick.
func (s *Selector) Select(c Criteria) (*model.Restaurant, error) {
	if c.PeopleCount <= 0 {
		return nil, errors.New("people count must be a positive number")
	}

	now := s.Now()
	start, end := WeekWindow(now)

	var excluded []string
	if err := s.DB.Model(&model.History{}).
		Where("date >= ? AND date < ?", start, end).
		Pluck("restaurant_id", &excluded).Error; err != nil {
		return nil, err
	}

	q := s.DB.Model(&model.Restaurant{})
	if len(excluded) > 0 {
		q = q.Where("id NOT IN ?", excluded)
	}
	if c.Temperature > 28 {
		q = q.Where("not_suitable_for_summer = ?", false)
	}
	if c.Temperature < 18 {
		q = q.Where("not_suitable_for_winter = ?", false)
	}
	if c.IsRaining {
		q = q.Where("not_suitable_for_rainy = ?", false)
	}

	var restaurants []model.Restaurant
	if err := q.Find(&restaurants).Error; err != nil {
		return nil, err
	}

	today := weekdayTokens[now.Weekday()]
	var eligible []*model.Restaurant
	for i := range restaurants {
		r := &restaurants[i]
		if !r.BusinessDays.Contains(today) {
			continue
		}
		if !r.SuggestedPeople.Admits(c.PeopleCount) {
			continue
		}
		if c.Radius != nil {
			dist := r.Distance
			if c.Latitude != nil && c.Longitude != nil && r.Latitude != nil && r.Longitude != nil {
				dist = round2(Haversine(*c.Latitude, *c.Longitude, *r.Latitude, *r.Longitude))
				r.Distance = dist
			}
			if dist > *c.Radius {
				continue
			}
		}
		eligible = append(eligible, r)
	}

	if len(eligible) == 0 {
		return nil, ErrNoMatch
	}
	return eligible[s.Rand.Intn(len(eligible))], nil
}
