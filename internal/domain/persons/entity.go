package persons

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("person not found")
	ErrInvalidSex  = errors.New("sex must be Male, Female or Other")
	ErrNameMissing = errors.New("name is required")
)

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexOther  Sex = "Other"
)

// Person is a family member a user tracks reports for.
type Person struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Age       *int      `json:"age,omitempty"`
	Sex       *Sex      `json:"sex,omitempty"`
	Height    *float64  `json:"height,omitempty"` // cm
	Weight    *float64  `json:"weight,omitempty"` // kg
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Person) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrNameMissing
	}
	if p.Sex != nil {
		switch *p.Sex {
		case SexMale, SexFemale, SexOther:
		default:
			return ErrInvalidSex
		}
	}
	return nil
}

// PersonContext is the demographic slice handed to the generator.
type PersonContext struct {
	Name   string
	Age    *int
	Sex    *Sex
	Height *float64
	Weight *float64
}

func (p *Person) Context() *PersonContext {
	return &PersonContext{Name: p.Name, Age: p.Age, Sex: p.Sex, Height: p.Height, Weight: p.Weight}
}

// BMI returns weight / (height in m)^2 rounded to one decimal, and false
// unless both height and weight are set and positive.
func (c *PersonContext) BMI() (float64, bool) {
	if c == nil || c.Height == nil || c.Weight == nil || *c.Height <= 0 || *c.Weight <= 0 {
		return 0, false
	}
	m := *c.Height / 100
	return math.Round(*c.Weight/(m*m)*10) / 10, true
}
