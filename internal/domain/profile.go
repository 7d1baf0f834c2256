package domain

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

const (
	MinAge          = 18
	MaxAge          = 100
	MaxBioLength    = 500
	MaxPhotos       = 3
	MaxInterests    = 5
	GeolocationCity = "by geolocation"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
	// GenderAny is only valid as a search preference.
	GenderAny Gender = "any"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func (g Gender) IsValidSearch() bool {
	return g == GenderAny || g.IsValid()
}

type Goal string

const (
	GoalRelationship Goal = "relationship"
	GoalFriendship   Goal = "friendship"
	GoalChat         Goal = "chat"
	GoalAny          Goal = "any"
)

func (g Goal) IsValid() bool {
	switch g {
	case GoalRelationship, GoalFriendship, GoalChat, GoalAny:
		return true
	}
	return false
}

// InterestVocabulary is the fixed set of interest tags a profile may pick from.
var InterestVocabulary = []string{
	"coffee", "games", "hiking", "it", "art", "sports",
	"movies", "music", "food", "photography", "cars", "travel",
}

func IsKnownInterest(tag string) bool {
	for _, t := range InterestVocabulary {
		if t == tag {
			return true
		}
	}
	return false
}

type Profile struct {
	ID                 int64      `json:"id" db:"id"`
	Identity           int64      `json:"identity" db:"identity"`
	Username           *string    `json:"username" db:"username"`
	DisplayName        string     `json:"display_name" db:"display_name" validate:"required,max=100"`
	Age                int        `json:"age" db:"age" validate:"min=18,max=100"`
	Gender             Gender     `json:"gender" db:"gender" validate:"oneof=male female other"`
	SearchGender       Gender     `json:"search_gender" db:"search_gender" validate:"oneof=male female other any"`
	SearchAgeMin       int        `json:"search_age_min" db:"search_age_min" validate:"min=18,max=100"`
	SearchAgeMax       int        `json:"search_age_max" db:"search_age_max" validate:"min=18,max=100,gtefield=SearchAgeMin"`
	SearchRadiusKm     int        `json:"search_radius_km" db:"search_radius_km" validate:"min=1,max=20000"`
	City               string     `json:"city" db:"city" validate:"max=100"`
	Latitude           *float64   `json:"latitude" db:"latitude" validate:"omitempty,latitude"`
	Longitude          *float64   `json:"longitude" db:"longitude" validate:"omitempty,longitude"`
	Bio                string     `json:"bio" db:"bio" validate:"max=500"`
	Photos             StringList `json:"photos" db:"photos" validate:"max=3"`
	Interests          StringList `json:"interests" db:"interests" validate:"max=5"`
	Goal               Goal       `json:"goal" db:"goal" validate:"oneof=relationship friendship chat any"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	IsBanned           bool       `json:"is_banned" db:"is_banned"`
	IsPremium          bool       `json:"is_premium" db:"is_premium"`
	LikesGivenToday    int        `json:"likes_given_today" db:"likes_given_today"`
	LastResetDate      *time.Time `json:"last_reset_date" db:"last_reset_date"`
	LikesReceivedTotal int        `json:"likes_received_total" db:"likes_received_total"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	LastSeenAt         time.Time  `json:"last_seen_at" db:"last_seen_at"`
}

// IsAvailable reports whether the profile may be shown to or liked by others.
func (p *Profile) IsAvailable() bool {
	return p.IsActive && !p.IsBanned
}

func (p *Profile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// DistanceTo returns the great-circle distance in km, or nil when either side has no coordinates.
func (p *Profile) DistanceTo(other *Profile) *float64 {
	if p == nil || other == nil || !p.HasLocation() || !other.HasLocation() {
		return nil
	}
	d := DistanceKm(*p.Latitude, *p.Longitude, *other.Latitude, *other.Longitude)
	return &d
}

// ProfileUpdate carries the fields of a partial profile update; nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName    *string
	Username       *string
	Age            *int
	Gender         *Gender
	SearchGender   *Gender
	SearchAgeMin   *int
	SearchAgeMax   *int
	SearchRadiusKm *int
	City           *string
	Latitude       *float64
	Longitude      *float64
	Bio            *string
	Photos         *StringList
	Interests      *StringList
	Goal           *Goal
	IsPremium      *bool
}

func (u *ProfileUpdate) IsEmpty() bool {
	return u == nil || (u.DisplayName == nil && u.Username == nil && u.Age == nil && u.Gender == nil &&
		u.SearchGender == nil && u.SearchAgeMin == nil && u.SearchAgeMax == nil && u.SearchRadiusKm == nil &&
		u.City == nil && u.Latitude == nil && u.Longitude == nil && u.Bio == nil && u.Photos == nil &&
		u.Interests == nil && u.Goal == nil && u.IsPremium == nil)
}

// Apply copies the non-nil fields of u onto p.
func (u *ProfileUpdate) Apply(p *Profile) {
	if u == nil {
		return
	}
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.Username != nil {
		p.Username = u.Username
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.SearchGender != nil {
		p.SearchGender = *u.SearchGender
	}
	if u.SearchAgeMin != nil {
		p.SearchAgeMin = *u.SearchAgeMin
	}
	if u.SearchAgeMax != nil {
		p.SearchAgeMax = *u.SearchAgeMax
	}
	if u.SearchRadiusKm != nil {
		p.SearchRadiusKm = *u.SearchRadiusKm
	}
	if u.City != nil {
		p.City = *u.City
	}
	if u.Latitude != nil {
		p.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = u.Longitude
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Photos != nil {
		p.Photos = u.Photos.Clone()
	}
	if u.Interests != nil {
		p.Interests = u.Interests.Clone()
	}
	if u.Goal != nil {
		p.Goal = *u.Goal
	}
	if u.IsPremium != nil {
		p.IsPremium = *u.IsPremium
	}
}

// StringList is an ordered list of strings stored as a Postgres TEXT[] column.
// A value that cannot be decoded scans as an empty list instead of failing the row.
type StringList []string

func (l *StringList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		*l = StringList{}
		return nil
	}
	*l = StringList(arr)
	if *l == nil {
		*l = StringList{}
	}
	return nil
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(l).Value()
}

func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

func (l StringList) Clone() StringList {
	out := make(StringList, len(l))
	copy(out, l)
	return out
}

// ProfileCounts is the moderation overview of the profile table.
type ProfileCounts struct {
	Total           int `json:"total" db:"total"`
	Active          int `json:"active" db:"active"`
	Banned          int `json:"banned" db:"banned"`
	Premium         int `json:"premium" db:"premium"`
	RegisteredToday int `json:"registered_today" db:"registered_today"`
}

// ProfileStats summarises a profile's activity.
type ProfileStats struct {
	LikesGiven         int `json:"likes_given"`
	LikesReceived      int `json:"likes_received"`
	ActiveMatches      int `json:"active_matches"`
	ProfileViews       int `json:"profile_views"`
	LikesGivenToday    int `json:"likes_given_today"`
	LikesReceivedTotal int `json:"likes_received_total"`
}

// ProfileCompletion reports how much of the displayable profile is filled in.
type ProfileCompletion struct {
	Percentage    int      `json:"percentage"`
	FilledCount   int      `json:"filled_count"`
	TotalCount    int      `json:"total_count"`
	MissingFields []string `json:"missing_fields"`
}

func (p *Profile) Completion() ProfileCompletion {
	fields := []struct {
		name   string
		filled bool
	}{
		{"photos", len(p.Photos) > 0},
		{"display_name", p.DisplayName != ""},
		{"age", p.Age > 0},
		{"gender", p.Gender != ""},
		{"city", p.City != ""},
		{"bio", p.Bio != ""},
	}

	c := ProfileCompletion{TotalCount: len(fields), MissingFields: []string{}}
	for _, f := range fields {
		if f.filled {
			c.FilledCount++
		} else {
			c.MissingFields = append(c.MissingFields, f.name)
		}
	}
	c.Percentage = c.FilledCount * 100 / c.TotalCount
	return c
}
