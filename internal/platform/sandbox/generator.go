package sandbox

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
)

var (
	firstNamesMale   = []string{"Arjun", "Rohan", "Vikram", "Amit", "Rahul", "Suresh", "Anil", "Kiran"}
	firstNamesFemale = []string{"Priya", "Anjali", "Meera", "Kavya", "Lakshmi", "Neha", "Pooja", "Sunita"}
	lastNames        = []string{"Sharma", "Patel", "Iyer", "Reddy", "Nair", "Gupta", "Singh", "Das"}
	streets          = []string{"MG Road", "Park Lane", "Station Road", "Lake View", "Temple Street", "Church Road"}
	cities           = []string{"Pune", "Mumbai", "Chennai", "Bengaluru", "Kolkata", "Jaipur"}

	services = []struct {
		name  string
		price string
	}{
		{"Consultation", "300.00"},
		{"Follow-up visit", "150.00"},
		{"Blood test (CBC)", "450.00"},
		{"X-Ray chest", "800.00"},
		{"Dressing", "120.00"},
		{"Paracetamol 500mg", "2.50"},
		{"Amoxicillin 250mg", "5.00"},
		{"ECG", "350.00"},
	}
)

// DataGenerator produces reproducible synthetic patients and bill items.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator seeded for reproducibility. If seed is
// 0 a time-based seed is chosen.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) randomPhone() string {
	return fmt.Sprintf("9%09d", g.rng.Intn(1000000000))
}

func (g *DataGenerator) GeneratePatient() *patient.Patient {
	first, gender := g.pick(firstNamesMale), "Male"
	if g.rng.Intn(2) == 0 {
		first, gender = g.pick(firstNamesFemale), "Female"
	}
	age := 1 + g.rng.Intn(90)
	return &patient.Patient{
		Name:    first + " " + g.pick(lastNames),
		Age:     &age,
		Gender:  gender,
		Phone:   g.randomPhone(),
		Address: fmt.Sprintf("%d %s, %s", 1+g.rng.Intn(200), g.pick(streets), g.pick(cities)),
	}
}

// GenerateBillItems returns one to four distinct services with small
// quantities.
func (g *DataGenerator) GenerateBillItems() []billing.ItemInput {
	n := 1 + g.rng.Intn(4)
	perm := g.rng.Perm(len(services))[:n]
	items := make([]billing.ItemInput, 0, n)
	for _, i := range perm {
		items = append(items, billing.ItemInput{
			Description: services[i].name,
			Quantity:    1 + g.rng.Intn(3),
			UnitPrice:   decimal.RequireFromString(services[i].price),
		})
	}
	return items
}
