package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Key identifies the single persisted slot an instance competes for
type Key struct {
	Definition string
	Body       string
}

func (k Key) String() string {
	if k.Body == "" {
		return k.Definition
	}
	return fmt.Sprintf("%s@%s", k.Definition, k.Body)
}

type instanceData struct {
	definition     *Definition
	body           string
	value          float64
	time           float64
	contributor    string
	contributorIDs ContributorSet
}

// Instance is either a valid achievement observation or Invalid.
//
// The zero value is Invalid. Every accessor is safe on an invalid instance and
// returns a neutral value instead.
type Instance struct {
	data *instanceData
}

// Invalid is the instance produced whenever construction fails
var Invalid = Instance{}

func (i Instance) Valid() bool {
	return i.data != nil
}

// Definition returns nil for an invalid instance
func (i Instance) Definition() *Definition {
	if i.data == nil {
		return nil
	}
	return i.data.definition
}

func (i Instance) Body() string {
	if i.data == nil {
		return ""
	}
	return i.data.body
}

func (i Instance) Value() float64 {
	if i.data == nil {
		return math.NaN()
	}
	return i.data.value
}

func (i Instance) Time() float64 {
	if i.data == nil {
		return math.NaN()
	}
	return i.data.time
}

func (i Instance) Contributor() string {
	if i.data == nil {
		return ""
	}
	return i.data.contributor
}

func (i Instance) ContributorIDs() ContributorSet {
	if i.data == nil {
		return ContributorSet{}
	}
	return i.data.contributorIDs
}

// Key returns the zero Key for an invalid instance
func (i Instance) Key() Key {
	if i.data == nil {
		return Key{}
	}
	key := Key{Definition: i.data.definition.Name}
	if i.data.definition.BodySpecific {
		key.Body = i.data.body
	}
	return key
}

func (i Instance) Title() string {
	if i.data == nil {
		return ""
	}
	return strings.ReplaceAll(i.data.definition.TitleTemplate, "{body}", i.data.body)
}

func (i Instance) FormattedValue() string {
	if i.data == nil || !i.data.definition.HasValue() {
		return ""
	}
	value := i.data.value
	switch i.data.definition.ValueKind {
	case ValueCost, ValueFunds:
		return "√" + humanize.Commaf(math.Round(value))
	case ValueMass:
		return humanize.CommafWithDigits(value, 2) + " t"
	case ValueNone, ValuePartsCount, ValueCrewCount, ValueTotalAssignedCrew:
		return humanize.Comma(int64(math.Round(value)))
	default:
		return humanize.Ftoa(value)
	}
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 6 * secondsPerHour
	daysPerYear      = 426
)

// FormattedTime renders universal time on the home planet calendar, e.g. "Y1, D1, 00:00:00"
func (i Instance) FormattedTime() string {
	if i.data == nil || !i.data.definition.HasTime() {
		return ""
	}
	return FormatUniversalTime(i.data.time)
}

func FormatUniversalTime(ut float64) string {
	if math.IsNaN(ut) || math.IsInf(ut, 0) || ut < 0 {
		return ""
	}
	total := int64(ut)
	days := total / secondsPerDay
	rest := total % secondsPerDay

	return fmt.Sprintf(
		"Y%d, D%d, %02d:%02d:%02d",
		days/daysPerYear+1,
		days%daysPerYear+1,
		rest/secondsPerHour,
		(rest%secondsPerHour)/secondsPerMinute,
		rest%secondsPerMinute,
	)
}

// with returns a copy of the instance with fn applied to the copied data
func (i Instance) with(fn func(data *instanceData)) Instance {
	if i.data == nil {
		return Invalid
	}
	data := *i.data
	fn(&data)
	return Instance{data: &data}
}
