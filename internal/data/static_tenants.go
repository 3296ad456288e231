package data

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domainauth "github.com/hotelbooking/hotelweb/internal/domain/auth"
	"github.com/hotelbooking/hotelweb/internal/ports"
)

// StaticTenants is an in-process TenantDirectory used when no database is configured.
// Writes only last for the life of the process.
type StaticTenants struct {
	mu      sync.RWMutex
	entries map[string]ports.StaffAssignment
	now     func() time.Time
}

var _ ports.TenantDirectory = (*StaticTenants)(nil)

// ParseStaticTenants reads "user=hotel;user2=hotel2". Blank entries are skipped.
func ParseStaticTenants(raw string) (*StaticTenants, error) {
	st := &StaticTenants{entries: map[string]ports.StaffAssignment{}, now: time.Now}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		user, hotel, ok := strings.Cut(part, "=")
		user = strings.TrimSpace(user)
		hotelID := domainauth.ParseTenantID(hotel)
		if !ok || user == "" || hotelID.IsZero() {
			return nil, fmt.Errorf("invalid static tenant entry %q (want user=hotel)", part)
		}
		st.entries[user] = ports.StaffAssignment{UserID: user, HotelID: hotelID}
	}
	return st, nil
}

// Lookup returns the hotel for userID.
func (s *StaticTenants) Lookup(_ context.Context, userID string) (domainauth.TenantID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.entries[strings.TrimSpace(userID)]
	if !ok {
		return "", domainauth.ErrTenantNotAssigned
	}
	return a.HotelID, nil
}

// Assign sets the hotel for userID.
func (s *StaticTenants) Assign(_ context.Context, userID string, hotelID domainauth.TenantID) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	hotelID = domainauth.ParseTenantID(hotelID.String())
	if hotelID.IsZero() {
		return ErrHotelIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = ports.StaffAssignment{UserID: userID, HotelID: hotelID, CreatedAt: s.now().UTC()}
	return nil
}

// Remove drops the assignment for userID.
func (s *StaticTenants) Remove(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID = strings.TrimSpace(userID)
	if _, ok := s.entries[userID]; !ok {
		return domainauth.ErrTenantNotAssigned
	}
	delete(s.entries, userID)
	return nil
}

// List returns all assignments ordered by user id.
func (s *StaticTenants) List(_ context.Context) ([]ports.StaffAssignment, error) {
	s.mu.RLock()
	out := make([]ports.StaffAssignment, 0, len(s.entries))
	for _, a := range s.entries {
		out = append(out, a)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
