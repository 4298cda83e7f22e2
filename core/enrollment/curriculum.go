package enrollment

func grade(g float64) *float64 { return &g }

// FallbackCurriculum is the sample BSIT evaluation shown when the backend
// evaluation cannot be loaded. First year first semester is complete; in the
// second semester PE2 and NSTP1 are incomplete and MS101 is passed.
func FallbackCurriculum() []Row {
	return []Row{
		{"CC100", "Introduction to Computing", 3, 1, 1, grade(88), StatusPassed},
		{"CC101", "Computer Programming 1", 3, 1, 1, grade(85), StatusPassed},
		{"GE1", "Understanding the Self", 3, 1, 1, grade(90), StatusPassed},
		{"GE2", "Readings in Philippine History", 3, 1, 1, grade(82), StatusPassed},
		{"GE3", "The Contemporary World", 3, 1, 1, grade(79), StatusPassed},
		{"MATH1", "Mathematics in the Modern World", 3, 1, 1, grade(76), StatusPassed},
		{"PE1", "Physical Fitness", 2, 1, 1, grade(93), StatusPassed},

		{"CC102", "Computer Programming 2", 3, 1, 2, nil, ""},
		{"HCI101", "Introduction to Human Computer Interaction", 3, 1, 2, nil, ""},
		{"MS101", "Discrete Mathematics", 3, 1, 2, grade(80), StatusPassed},
		{"GEC1", "Purposive Communication", 3, 1, 2, nil, ""},
		{"PE2", "Rhythmic Activities", 2, 1, 2, nil, "incomplete"},
		{"NSTP1", "National Service Training Program 1", 3, 1, 2, nil, "incomplete"},

		{"CC103", "Data Structures and Algorithms", 3, 2, 1, nil, ""},
		{"IM101", "Fundamentals of Database Systems", 3, 2, 1, nil, ""},
		{"NET101", "Networking 1", 3, 2, 1, nil, ""},
		{"OOP101", "Object-Oriented Programming", 3, 2, 1, nil, ""},
		{"GE4", "Art Appreciation", 3, 2, 1, nil, ""},
		{"PE3", "Individual and Dual Sports", 2, 2, 1, nil, ""},
		{"NSTP2", "National Service Training Program 2", 3, 2, 1, nil, ""},
	}
}
