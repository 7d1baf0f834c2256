package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/domain"
	"github.com/gdugdh24/nearby-backend/internal/repository"
)

func TestCandidateWhereBase(t *testing.T) {
	where, args := candidateWhere(repository.CandidateFilter{ViewerID: 7, Now: time.Now()})

	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	for _, want := range []string{"p.id <> $1", "NOT p.is_banned", "FROM likes l", "FROM matches m"} {
		if !strings.Contains(where, want) {
			t.Errorf("expected predicate to contain %q", want)
		}
	}
	if strings.Contains(where, "p.gender") || strings.Contains(where, "ASIN") {
		t.Errorf("expected no optional filters, got %s", where)
	}
}

func TestCandidateWhereOptionalFilters(t *testing.T) {
	where, args := candidateWhere(repository.CandidateFilter{
		ViewerID: 7,
		Now:      time.Now(),
		AgeMin:   20,
		AgeMax:   30,
		Gender:   domain.GenderFemale,
		Radius:   &repository.RadiusFilter{Latitude: 55.7, Longitude: 37.6, Km: 10},
	})

	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d", len(args))
	}
	for _, want := range []string{"p.age >= $3", "p.age <= $4", "p.gender = $5", "RADIANS($6)", "$7", "<= $8"} {
		if !strings.Contains(where, want) {
			t.Errorf("expected predicate to contain %q, got %s", want, where)
		}
	}
	if args[4] != domain.GenderFemale {
		t.Errorf("expected gender arg, got %v", args[4])
	}
}

func TestCandidateWhereAnyGender(t *testing.T) {
	where, _ := candidateWhere(repository.CandidateFilter{ViewerID: 1, Gender: domain.GenderAny})
	if strings.Contains(where, "p.gender") {
		t.Errorf("expected any gender to skip the filter")
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("expected escaped pattern, got %q", got)
	}
}
