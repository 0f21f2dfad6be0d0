package stub

import (
	"fmt"
	"time"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

var seedNames = [][2]string{
	{"Adaeze", "Okafor"}, {"Tunde", "Bakare"}, {"Chiamaka", "Eze"}, {"Ibrahim", "Musa"},
	{"Ngozi", "Obi"}, {"Emeka", "Nwosu"}, {"Funmilayo", "Adeyemi"}, {"Yusuf", "Abdullahi"},
	{"Kelechi", "Onyeka"}, {"Bisola", "Ogunleye"}, {"Chinedu", "Ike"}, {"Halima", "Sani"},
	{"Oluwaseun", "Alabi"}, {"Amarachi", "Uche"}, {"Segun", "Afolabi"}, {"Zainab", "Bello"},
	{"Ifeanyi", "Okeke"}, {"Temitope", "Ojo"}, {"Obinna", "Chukwu"}, {"Aisha", "Lawal"},
	{"Chidera", "Anyanwu"}, {"Kunle", "Oladipo"}, {"Nneka", "Madu"}, {"Femi", "Adeola"},
}

var seedCategories = []exeat.Category{
	{ID: 1, Name: "Weekend"},
	{ID: 2, Name: "Medical"},
	{ID: 3, Name: "Family Emergency"},
	{ID: 4, Name: "Official"},
}

var seedDestinations = []string{"Lagos", "Abuja", "Enugu", "Ibadan", "Port Harcourt", "Kano"}

// Seed fills the store with n deterministic approved requests around now.
// Roughly two thirds wait for sign-out; the rest are already out and wait
// for sign-in, with an open gate event each.
func Seed(s *Store, n int, now time.Time) {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}

	for i := range n {
		id := int64(i + 1)
		name := seedNames[i%len(seedNames)]
		r := exeat.Request{
			ID: id,
			Student: exeat.Student{
				ID:       1000 + id,
				FName:    name[0],
				LName:    name[1],
				MatricNo: fmt.Sprintf("VUG/%s/%02d/%03d", []string{"CSC", "LAW", "ACC", "MCB"}[i%4], 20+i%5, id),
			},
			Category:      seedCategories[i%len(seedCategories)],
			Destination:   seedDestinations[i%len(seedDestinations)],
			DepartureDate: day(i % 3),
			ReturnDate:    day(2 + i%4),
			Status:        "approved",
			UpdatedAt:     now.UTC().Format(timeLayout),
			ActionType:    exeat.SignOut,
		}

		if i%3 == 2 {
			r.ActionType = exeat.SignIn
			r.DepartureDate = day(-2 - i%3)
			r.ReturnDate = day(i % 2)
			out := now.AddDate(0, 0, -2-i%3).UTC().Format(timeLayout)
			s.PutEvent(exeat.GateEvent{
				ID:            id,
				MatricNo:      r.Student.MatricNo,
				FName:         r.Student.FName,
				LName:         r.Student.LName,
				SignoutTime:   &out,
				DepartureDate: optional(r.DepartureDate),
				ReturnDate:    optional(r.ReturnDate),
			})
		}
		s.Put(r)
	}
}
