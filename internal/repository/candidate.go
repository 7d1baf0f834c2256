package repository

import (
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
)

// CandidateFilter describes the eligible set for one viewer.
type CandidateFilter struct {
	ViewerID int64
	AgeMin   int
	AgeMax   int
	// Gender restricts candidates unless it is empty or domain.GenderAny.
	Gender domain.Gender
	Now    time.Time
	// Radius, when set, drops candidates with known coordinates farther than Radius.Km.
	Radius *RadiusFilter
}

type RadiusFilter struct {
	Latitude  float64
	Longitude float64
	Km        float64
}

// Accepts reports whether candidate passes the profile-local part of the filter.
// Like and match exclusion are checked by the store.
func (f CandidateFilter) Accepts(candidate *domain.Profile) bool {
	if candidate.ID == f.ViewerID || !candidate.IsAvailable() {
		return false
	}
	if f.AgeMin > 0 && candidate.Age < f.AgeMin {
		return false
	}
	if f.AgeMax > 0 && candidate.Age > f.AgeMax {
		return false
	}
	if f.Gender != "" && f.Gender != domain.GenderAny && candidate.Gender != f.Gender {
		return false
	}
	if f.Radius != nil && candidate.HasLocation() {
		d := domain.DistanceKm(f.Radius.Latitude, f.Radius.Longitude, *candidate.Latitude, *candidate.Longitude)
		if d > f.Radius.Km {
			return false
		}
	}
	return true
}
