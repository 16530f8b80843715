package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

type place struct{ city, state, country string }

var (
	firstNames = map[compat.Gender][]string{
		compat.Male:   {"Aarav", "Vivaan", "Aditya", "Arjun", "Rohan", "Karthik", "Siddharth", "Ishaan", "Rahul", "Varun", "Nikhil", "Pranav"},
		compat.Female: {"Ananya", "Diya", "Ishita", "Kavya", "Meera", "Priya", "Saanvi", "Nandini", "Riya", "Aditi", "Lakshmi", "Sneha"},
	}
	lastNames = []string{"Sharma", "Iyer", "Reddy", "Patel", "Nair", "Gupta", "Menon", "Rao", "Kulkarni", "Banerjee", "Joshi", "Pillai"}

	places = []place{
		{"Mumbai", "Maharashtra", "India"},
		{"Pune", "Maharashtra", "India"},
		{"Bengaluru", "Karnataka", "India"},
		{"Mysuru", "Karnataka", "India"},
		{"Chennai", "Tamil Nadu", "India"},
		{"Coimbatore", "Tamil Nadu", "India"},
		{"Hyderabad", "Telangana", "India"},
		{"Delhi", "Delhi", "India"},
		{"Jaipur", "Rajasthan", "India"},
		{"Kolkata", "West Bengal", "India"},
		{"Ahmedabad", "Gujarat", "India"},
		{"Kochi", "Kerala", "India"},
		{"London", "England", "United Kingdom"},
		{"San Jose", "California", "United States"},
		{"Dubai", "Dubai", "United Arab Emirates"},
	}

	degrees = []struct{ degree, field string }{
		{"B.Tech", "Computer Science"},
		{"M.Tech", "Electronics"},
		{"MBA", "Finance"},
		{"MBBS", "Medicine"},
		{"B.Com", "Accounting"},
		{"CA", "Chartered Accountancy"},
		{"M.Sc", "Biotechnology"},
		{"B.A.", "Economics"},
		{"PhD", "Physics"},
	}

	jobs    = []string{"Software Engineer", "Doctor", "Chartered Accountant", "Product Manager", "Teacher", "Civil Servant", "Consultant", "Research Scientist", "Entrepreneur", "Architect"}
	incomes = []string{"5-10 LPA", "10-20 LPA", "20-35 LPA", "35-50 LPA", "50+ LPA"}

	dietWeights   = weighted[compat.Diet]{{compat.Veg, 45}, {compat.NonVeg, 35}, {compat.Eggetarian, 12}, {compat.Vegan, 8}}
	habitWeights  = weighted[compat.Habit]{{compat.HabitNo, 70}, {compat.HabitOccasional, 25}, {compat.HabitYes, 5}}
	valueWeights  = weighted[compat.FamilyValue]{{compat.Traditional, 35}, {compat.Moderate, 45}, {compat.Liberal, 20}}
	familyWeights = weighted[compat.FamilyType]{{compat.Nuclear, 60}, {compat.Joint, 35}, {compat.OtherFamily, 5}}
)

type weight[T any] struct {
	value T
	n     int
}

type weighted[T any] []weight[T]

func (w weighted[T]) pick(r *rand.Rand) T {
	total := 0
	for _, x := range w {
		total += x.n
	}
	n := r.Intn(total)
	for _, x := range w {
		if n < x.n {
			return x.value
		}
		n -= x.n
	}
	return w[len(w)-1].value
}

func pick[T any](r *rand.Rand, xs []T) T {
	return xs[r.Intn(len(xs))]
}

// generateProfile builds a valid random profile. Genders alternate by index
// so the pool stays balanced.
func generateProfile(r *rand.Rand, i int) compat.Profile {
	gender := compat.Male
	if i%2 == 1 {
		gender = compat.Female
	}
	age := 21 + r.Intn(20)
	loc := pick(r, places)
	edu := pick(r, degrees)

	p := compat.Profile{
		Name:      fmt.Sprintf("%s %s", pick(r, firstNames[gender]), pick(r, lastNames)),
		Gender:    gender,
		Age:       age,
		Location:  compat.Location{City: loc.city, State: loc.state, Country: loc.country},
		Education: compat.Education{Degree: edu.degree, Field: edu.field},
		Career:    compat.Career{JobTitle: pick(r, jobs), IncomeRange: pick(r, incomes)},
		Lifestyle: compat.Lifestyle{
			Diet:     dietWeights.pick(r),
			Smoking:  habitWeights.pick(r),
			Drinking: habitWeights.pick(r),
		},
		Family: compat.Family{Type: familyWeights.pick(r), Values: valueWeights.pick(r)},
	}

	// Most members state an age preference around their own age.
	if r.Float64() < 0.6 {
		lo, hi := age-2-r.Intn(5), age+1+r.Intn(5)
		if gender == compat.Female {
			lo, hi = age-1-r.Intn(3), age+3+r.Intn(6)
		}
		p.Preferences = &compat.Preferences{
			AgeRange:           &compat.AgeRange{Min: max(18, lo), Max: hi},
			PreferredLocations: []string{loc.city},
		}
	}
	return p
}

// approvalFor assigns a moderation status.
func approvalFor(r *rand.Rand, pendingRate, rejectRate float64) string {
	switch x := r.Float64(); {
	case x < rejectRate:
		return discovery.ApprovalRejected
	case x < rejectRate+pendingRate:
		return discovery.ApprovalPending
	default:
		return discovery.ApprovalApproved
	}
}

func uniqueEmail(r *rand.Rand, name string, used map[string]struct{}) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	for {
		domain := pick(r, []string{"example.com", "mail.test", "dev.local"})
		email := fmt.Sprintf("%s+%d@%s", slug, r.Intn(1000000), domain)
		if _, ok := used[email]; !ok {
			used[email] = struct{}{}
			return email
		}
	}
}
