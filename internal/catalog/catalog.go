package catalog

import "sort"

// Doctor is an immutable catalog entry describing a practitioner and their
// open slots. Availability maps an ISO date to the ordered slot labels for
// that day (e.g. "9:00 AM - 10:00 AM").
type Doctor struct {
	ID              string
	Name            string
	Category        string
	Qualification   string
	ExperienceYears int
	Phone           string
	Availability    map[string][]string
}

// Catalog is the read-only directory of categories, doctors, and slots.
type Catalog struct {
	categories []string
	byCategory map[string][]Doctor
	byName     map[string]Doctor
}

// New builds a catalog from the supplied doctors. Category order follows the
// order of first appearance.
func New(doctors []Doctor) *Catalog {
	c := &Catalog{
		byCategory: make(map[string][]Doctor),
		byName:     make(map[string]Doctor),
	}
	for _, d := range doctors {
		if _, ok := c.byCategory[d.Category]; !ok {
			c.categories = append(c.categories, d.Category)
		}
		c.byCategory[d.Category] = append(c.byCategory[d.Category], d)
		c.byName[d.Name] = d
	}
	return c
}

// Categories returns the known medical categories in presentation order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// HasCategory reports whether the category exists in the catalog.
func (c *Catalog) HasCategory(name string) bool {
	_, ok := c.byCategory[name]
	return ok
}

// Doctors returns the roster for a category, empty when the category is unknown.
func (c *Catalog) Doctors(category string) []Doctor {
	roster := c.byCategory[category]
	out := make([]Doctor, len(roster))
	copy(out, roster)
	return out
}

// DoctorByName looks up a doctor by their full name.
func (c *Catalog) DoctorByName(name string) (Doctor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// RosterNames returns the full names of a category's doctors.
func (c *Catalog) RosterNames(category string) []string {
	roster := c.byCategory[category]
	names := make([]string, 0, len(roster))
	for _, d := range roster {
		names = append(names, d.Name)
	}
	return names
}

// Dates returns a doctor's available dates in ascending order.
func (c *Catalog) Dates(doctorName string) []string {
	d, ok := c.byName[doctorName]
	if !ok {
		return nil
	}
	dates := make([]string, 0, len(d.Availability))
	for date := range d.Availability {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Slots returns the ordered slot labels for a doctor on a given date.
func (c *Catalog) Slots(doctorName, date string) []string {
	d, ok := c.byName[doctorName]
	if !ok {
		return nil
	}
	slots := d.Availability[date]
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

// HasSlot reports whether the doctor has the exact slot on the date.
func (c *Catalog) HasSlot(doctorName, date, slot string) bool {
	for _, s := range c.Slots(doctorName, date) {
		if s == slot {
			return true
		}
	}
	return false
}
