package domain

// Card is the display summary of a profile handed to the transport.
type Card struct {
	Identity    int64    `json:"identity"`
	Username    *string  `json:"username,omitempty"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age"`
	Gender      Gender   `json:"gender"`
	City        string   `json:"city"`
	Bio         string   `json:"bio"`
	Photos      []string `json:"photos"`
	Interests   []string `json:"interests"`
	Goal        Goal     `json:"goal"`
	IsPremium   bool     `json:"is_premium"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
}

// NewCard renders p as seen by viewer. viewer may be nil.
func NewCard(p, viewer *Profile) *Card {
	if p == nil {
		return nil
	}
	c := &Card{
		Identity:    p.Identity,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Age:         p.Age,
		Gender:      p.Gender,
		City:        p.City,
		Bio:         p.Bio,
		Photos:      p.Photos.Clone(),
		Interests:   p.Interests.Clone(),
		Goal:        p.Goal,
		IsPremium:   p.IsPremium,
	}
	if viewer != nil {
		c.DistanceKm = viewer.DistanceTo(p)
	}
	return c
}
