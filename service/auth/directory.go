package auth

import (
	"sort"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
)

// TeacherSummary is the directory projection of an approved teacher,
// including the availability students browse before booking.
type TeacherSummary struct {
	ID           uint                      `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	ProfilePic   string                    `json:"profilePic,omitempty"`
	Availability []models.AvailabilitySlot `json:"availability"`
}

func summarize(teacher models.Teacher) TeacherSummary {
	availability := teacher.Availability
	if availability == nil {
		availability = []models.AvailabilitySlot{}
	}
	return TeacherSummary{
		ID:           teacher.ID,
		Name:         teacher.Name,
		Email:        teacher.Email,
		ProfilePic:   teacher.ProfilePic,
		Availability: availability,
	}
}

// groupByDepartment buckets teachers for the directory view and returns the
// sorted list of departments present.
func groupByDepartment(teachers []models.Teacher) (map[string][]TeacherSummary, []string) {
	grouped := make(map[string][]TeacherSummary)
	for _, teacher := range teachers {
		grouped[teacher.Department] = append(grouped[teacher.Department], summarize(teacher))
	}

	departments := make([]string, 0, len(grouped))
	for dept := range grouped {
		departments = append(departments, dept)
	}
	sort.Strings(departments)
	return grouped, departments
}
