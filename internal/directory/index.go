package directory

import "booking-warden/internal/models"

// Index answers display-name lookups for users and housing units.
type Index struct {
	users map[int64]string
	units map[int64]string
}

func NewIndex(users []models.User, locations []models.Location) *Index {
	idx := &Index{
		users: make(map[int64]string, len(users)),
		units: make(map[int64]string, len(locations)),
	}
	for _, u := range users {
		if name := u.FullName(); name != "" {
			idx.users[u.ID] = name
		}
	}
	for _, l := range locations {
		if label := l.DisplayName(); label != "" {
			idx.units[l.ID] = label
		}
	}
	return idx
}

func (i *Index) UserName(userID int64) (string, bool) {
	name, ok := i.users[userID]
	return name, ok
}

func (i *Index) UnitLabel(unitID int64) (string, bool) {
	label, ok := i.units[unitID]
	return label, ok
}
