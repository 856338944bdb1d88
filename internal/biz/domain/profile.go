package domain

import (
	"math"
	"strings"
	"time"
)

// Profile holds the candidate attributes the engine reads from the profile store
type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Gender       string     `json:"gender"`
	InterestedIn []string   `json:"interested_in,omitempty"` // genders; empty means everyone
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Age          int        `json:"age,omitempty"` // used when BirthDate is unknown
	City         string     `json:"city"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Interests    []string   `json:"interests"`
	Bio          string     `json:"bio"`
	PhotoCount   int        `json:"photo_count"`
	Verified     bool       `json:"verified"`
}

// AgeAt returns the age in whole years at now, falling back to the Age field
func (p *Profile) AgeAt(now time.Time) int {
	if p.BirthDate == nil {
		return p.Age
	}
	b := *p.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age
}

// HasCoordinates reports whether both latitude and longitude are known
func (p *Profile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// SameCity compares cities case-insensitively; empty cities never match
func (p *Profile) SameCity(other *Profile) bool {
	if p.City == "" || other.City == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.City), strings.TrimSpace(other.City))
}

// Accepts reports whether p is open to profiles of the given gender
func (p *Profile) Accepts(gender string) bool {
	if len(p.InterestedIn) == 0 {
		return true
	}
	for _, g := range p.InterestedIn {
		if strings.EqualFold(g, gender) {
			return true
		}
	}
	return false
}

// SharedInterests returns the interests both profiles list, in p's order
func (p *Profile) SharedInterests(other *Profile) []string {
	theirs := make(map[string]struct{}, len(other.Interests))
	for _, in := range other.Interests {
		theirs[NormalizeTag(in)] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, in := range p.Interests {
		key := NormalizeTag(in)
		if _, ok := theirs[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, key)
	}
	return shared
}

// DistanceKm returns the great-circle distance between two profiles, or -1 if unknown
func (p *Profile) DistanceKm(other *Profile) float64 {
	if !p.HasCoordinates() || !other.HasCoordinates() {
		return -1
	}
	const earthRadiusKm = 6371.0
	lat1 := *p.Latitude * math.Pi / 180
	lat2 := *other.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (*other.Longitude - *p.Longitude) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// NormalizeTag lowercases and trims an interest tag
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
