/*
seed.go - Default state for first launch

Absent a prior snapshot the engine starts with a single primary owner and a
small starter catalog, mirroring what the storefront ships with.
*/
package engine

// OwnerSeed describes the primary owner account created on first launch.
// Its Username is also the reserved name the role policy protects.
type OwnerSeed struct {
	Username string
	Email    string
	Phone    string
	FullName string
}

// DefaultOwner is the stock owner account used when no configuration is
// supplied.
func DefaultOwner() OwnerSeed {
	return OwnerSeed{
		Username: "nour",
		Email:    "nour@gmail.com",
		Phone:    "01028178830",
		FullName: "Eng. Shehab Elebady",
	}
}

// DefaultState builds the initial aggregate: the owner with a working float
// and two seed lessons.
func DefaultState(owner OwnerSeed) AppState {
	return AppState{
		Users: []User{
			{
				ID:               "u0",
				Username:         owner.Username,
				Email:            owner.Email,
				FullName:         owner.FullName,
				Phone:            owner.Phone,
				FatherPhone:      "N/A",
				MotherPhone:      "N/A",
				Role:             RoleOwner,
				Balance:          NewAmountFromInt(10000),
				PurchasedLessons: []LessonID{},
			},
		},
		Lessons: []Lesson{
			{
				ID:           "l1",
				Title:        "Advanced Calculus Basics",
				Description:  "A deep dive into derivatives and integrals for high school seniors.",
				Price:        NewAmountFromInt(50),
				ViewLimit:    3,
				VideoRef:     "https://www.w3schools.com/html/mov_bbb.mp4",
				ThumbnailRef: "https://picsum.photos/seed/math/400/225",
			},
			{
				ID:           "l2",
				Title:        "Organic Chemistry: Hydrocarbons",
				Description:  "Understanding alkanes, alkenes, and alkynes with practical examples.",
				Price:        NewAmountFromInt(75),
				ViewLimit:    5,
				VideoRef:     "https://www.w3schools.com/html/mov_bbb.mp4",
				ThumbnailRef: "https://picsum.photos/seed/chem/400/225",
			},
		},
		Activity:        []EntitlementRecord{},
		DepositRequests: []DepositRequest{},
		CurrentUser:     "",
	}
}
