package dialogue

import "strings"

// Extractors match free-form user text against a known candidate set. They are
// pure and total: no match is the empty string, never an error. The engine
// always prefers their output over the model's structured fields, since the
// model can propose doctors or slots that do not exist.

// ExtractDoctorName finds a roster doctor mentioned in the message. Matching
// is tried in priority order: full name containment, name-after-title
// containment, token overlap with the bare name, then a 3-character prefix
// match against message tokens.
func ExtractDoctorName(message string, candidates []string) string {
	message = strings.ToLower(message)

	for _, name := range candidates {
		if strings.Contains(message, strings.ToLower(name)) {
			return name
		}
		if bare := bareDoctorName(name); bare != "" && strings.Contains(message, bare) {
			return name
		}
	}

	for _, name := range candidates {
		bare := bareDoctorName(name)
		for _, word := range strings.Fields(bare) {
			if strings.Contains(message, word) {
				return name
			}
		}
	}

	for _, name := range candidates {
		fields := strings.Fields(bareDoctorName(name))
		if len(fields) == 0 {
			continue
		}
		prefix := fields[0]
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		for _, word := range strings.Fields(message) {
			if strings.HasPrefix(word, prefix) {
				return name
			}
		}
	}

	return ""
}

// bareDoctorName strips the "Dr. " title, lowercased.
func bareDoctorName(name string) string {
	lower := strings.ToLower(name)
	return strings.TrimSpace(strings.TrimPrefix(lower, "dr. "))
}

// hourLabels maps bare numerals to canonical slot start times, tried in this
// order so "10" wins over "1".
var hourLabels = []struct {
	numeral string
	label   string
}{
	{"9", "9:00 AM"},
	{"10", "10:00 AM"},
	{"11", "11:00 AM"},
	{"12", "12:00 PM"},
	{"1", "1:00 PM"},
	{"2", "2:00 PM"},
	{"3", "3:00 PM"},
	{"4", "4:00 PM"},
	{"5", "5:00 PM"},
	{"6", "6:00 PM"},
}

// ExtractTimeSlot finds one of the candidate slot labels in the message.
// Tried in priority order: exact label containment, either half of a
// "start - end" label, then bare numerals resolved through hourLabels.
func ExtractTimeSlot(message string, slots []string) string {
	message = strings.ToLower(message)

	for _, slot := range slots {
		if strings.Contains(message, strings.ToLower(slot)) {
			return slot
		}
	}

	for _, slot := range slots {
		for _, half := range strings.Split(strings.ToLower(slot), " - ") {
			if strings.Contains(message, half) {
				return slot
			}
		}
	}

	for _, hour := range hourLabels {
		if !strings.Contains(message, hour.numeral) {
			continue
		}
		for _, slot := range slots {
			if strings.Contains(slot, hour.label) {
				return slot
			}
		}
	}

	return ""
}

// dateAliases maps ordinal words, numerals, and relative terms to the demo
// window's ISO dates. Order matters: earlier aliases win on substring overlap.
var dateAliases = []struct {
	alias string
	date  string
}{
	{"20", "2024-03-20"},
	{"20th", "2024-03-20"},
	{"twenty", "2024-03-20"},
	{"21", "2024-03-21"},
	{"21st", "2024-03-21"},
	{"twenty one", "2024-03-21"},
	{"twenty first", "2024-03-21"},
	{"22", "2024-03-22"},
	{"22nd", "2024-03-22"},
	{"twenty two", "2024-03-22"},
	{"twenty second", "2024-03-22"},
	{"last", "2024-03-22"},
	{"last one", "2024-03-22"},
	{"first", "2024-03-20"},
	{"second", "2024-03-21"},
	{"third", "2024-03-22"},
}

// ExtractDate resolves a date reference in the message to an ISO date string.
// Exact ISO strings win before the alias table, since "2024-03-22" also
// contains the "20" alias.
func ExtractDate(message string) string {
	message = strings.ToLower(message)

	for _, ref := range dateAliases {
		if strings.Contains(message, ref.date) {
			return ref.date
		}
	}
	for _, ref := range dateAliases {
		if strings.Contains(message, ref.alias) {
			return ref.date
		}
	}
	return ""
}
