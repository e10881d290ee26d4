package catalog

// Demo returns the hospital's demo directory: three categories, seven
// doctors, and a fixed three-day booking window. This stands in for a real
// scheduling system until one is integrated.
func Demo() *Catalog {
	return New([]Doctor{
		{
			ID:              "DOC001",
			Name:            "Dr. Anil Kumar",
			Category:        "General Medicine",
			Qualification:   "MBBS, MD (General Medicine)",
			ExperienceYears: 12,
			Phone:           "1234567890",
			Availability: map[string][]string{
				"2024-03-20": {"9:00 AM - 10:00 AM", "4:00 PM - 5:00 PM"},
				"2024-03-21": {"10:00 AM - 11:00 AM", "3:00 PM - 4:00 PM"},
				"2024-03-22": {"9:00 AM - 10:00 AM", "4:00 PM - 5:00 PM"},
			},
		},
		{
			ID:              "DOC002",
			Name:            "Dr. Sneha Rathi",
			Category:        "General Medicine",
			Qualification:   "MBBS, DNB (Internal Medicine)",
			ExperienceYears: 8,
			Phone:           "1234567891",
			Availability: map[string][]string{
				"2024-03-20": {"10:00 AM - 11:00 AM", "5:00 PM - 6:00 PM"},
				"2024-03-21": {"9:00 AM - 10:00 AM", "4:00 PM - 5:00 PM"},
				"2024-03-22": {"11:00 AM - 12:00 PM", "5:00 PM - 6:00 PM"},
			},
		},
		{
			ID:              "DOC003",
			Name:            "Dr. Ramesh Yadav",
			Category:        "Orthopedics",
			Qualification:   "MBBS, MS (Orthopedics)",
			ExperienceYears: 10,
			Phone:           "1234567892",
			Availability: map[string][]string{
				"2024-03-20": {"9:00 AM - 11:00 AM", "3:00 PM - 4:00 PM"},
				"2024-03-21": {"10:00 AM - 12:00 PM", "4:00 PM - 5:00 PM"},
				"2024-03-22": {"9:00 AM - 11:00 AM", "3:00 PM - 4:00 PM"},
			},
		},
		{
			ID:              "DOC004",
			Name:            "Dr. Priya Mehra",
			Category:        "Orthopedics",
			Qualification:   "MBBS, Diploma in Orthopedics",
			ExperienceYears: 6,
			Phone:           "1234567893",
			Availability: map[string][]string{
				"2024-03-20": {"11:00 AM - 12:00 PM", "4:00 PM - 5:00 PM"},
				"2024-03-21": {"9:00 AM - 10:00 AM", "3:00 PM - 4:00 PM"},
				"2024-03-22": {"10:00 AM - 11:00 AM", "4:00 PM - 5:00 PM"},
			},
		},
		{
			ID:              "DOC005",
			Name:            "Dr. Arvind Sharma",
			Category:        "Orthopedics",
			Qualification:   "MBBS, MS (Ortho)",
			ExperienceYears: 15,
			Phone:           "1234567894",
			Availability: map[string][]string{
				"2024-03-20": {"2:00 PM - 3:00 PM", "5:00 PM - 6:00 PM"},
				"2024-03-21": {"1:00 PM - 2:00 PM", "4:00 PM - 5:00 PM"},
				"2024-03-22": {"2:00 PM - 3:00 PM", "5:00 PM - 6:00 PM"},
			},
		},
		{
			ID:              "DOC006",
			Name:            "Dr. Neeraj Sinha",
			Category:        "Cardiology",
			Qualification:   "MBBS, MD, DM (Cardiology)",
			ExperienceYears: 14,
			Phone:           "1234567895",
			Availability: map[string][]string{
				"2024-03-20": {"9:30 AM - 10:30 AM", "3:30 PM - 4:30 PM"},
				"2024-03-21": {"10:30 AM - 11:30 AM", "4:30 PM - 5:30 PM"},
				"2024-03-22": {"9:30 AM - 10:30 AM", "3:30 PM - 4:30 PM"},
			},
		},
		{
			ID:              "DOC007",
			Name:            "Dr. Pooja Bansal",
			Category:        "Cardiology",
			Qualification:   "MBBS, MD (Medicine), Fellowship in Cardiology",
			ExperienceYears: 9,
			Phone:           "1234567896",
			Availability: map[string][]string{
				"2024-03-20": {"11:30 AM - 12:30 PM", "5:00 PM - 6:00 PM"},
				"2024-03-21": {"10:30 AM - 11:30 AM", "4:00 PM - 5:00 PM"},
				"2024-03-22": {"11:30 AM - 12:30 PM", "5:00 PM - 6:00 PM"},
			},
		},
	})
}
