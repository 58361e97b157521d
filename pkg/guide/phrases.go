package guide

import (
	"fmt"
	"slices"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

// Phrasebook holds the wording of every instruction in one language.
// Floor phrases take the target floor number; arrival phrases take the
// room's display name.
type Phrasebook struct {
	Straight string
	Left     string
	Right    string

	StairsUp     string
	StairsDown   string
	ElevatorUp   string
	ElevatorDown string

	InFront string
	OnLeft  string
	OnRight string
}

// English is the default phrasebook.
var English = Phrasebook{
	Straight:     "Go straight ahead",
	Left:         "Turn left",
	Right:        "Turn right",
	StairsUp:     "Take the stairs up to floor %d",
	StairsDown:   "Take the stairs down to floor %d",
	ElevatorUp:   "Take the elevator up to floor %d",
	ElevatorDown: "Take the elevator down to floor %d",
	InFront:      "Room %s is in front of you",
	OnLeft:       "Room %s is on your left",
	OnRight:      "Room %s is on your right",
}

// French is the wording used on the campus signage app.
var French = Phrasebook{
	Straight:     "Allez tout droit",
	Left:         "Tournez à gauche",
	Right:        "Tournez à droite",
	StairsUp:     "Montez les escaliers jusqu'à l'étage %d",
	StairsDown:   "Descendez les escaliers jusqu'à l'étage %d",
	ElevatorUp:   "Prenez l'ascenseur jusqu'à l'étage %d",
	ElevatorDown: "Prenez l'ascenseur jusqu'à l'étage %d",
	InFront:      "La salle %s est en face de vous",
	OnLeft:       "La salle %s est sur votre gauche",
	OnRight:      "La salle %s est sur votre droite",
}

// DefaultLocale is used when no locale is requested.
const DefaultLocale = "en"

var phrasebooks = map[string]Phrasebook{
	"en": English,
	"fr": French,
}

// Lookup returns the phrasebook for locale. An empty locale means
// [DefaultLocale].
func Lookup(locale string) (Phrasebook, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	p, ok := phrasebooks[locale]
	if !ok {
		return Phrasebook{}, errors.New(errors.ErrCodeInvalidInput,
			"unsupported locale %q (available: %v)", locale, Locales())
	}
	return p, nil
}

// Locales returns the supported locale tags in sorted order.
func Locales() []string {
	out := make([]string, 0, len(phrasebooks))
	for k := range phrasebooks {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (p Phrasebook) text(k Kind, up bool, floor int) string {
	switch k {
	case Straight:
		return p.Straight
	case Left:
		return p.Left
	case Right:
		return p.Right
	case Stairs:
		if up {
			return fmt.Sprintf(p.StairsUp, floor)
		}
		return fmt.Sprintf(p.StairsDown, floor)
	case Elevator:
		if up {
			return fmt.Sprintf(p.ElevatorUp, floor)
		}
		return fmt.Sprintf(p.ElevatorDown, floor)
	}
	return ""
}

// arrival rewrites a turn or straight step into arrival phrasing.
func (p Phrasebook) arrival(k Kind, room string) string {
	switch k {
	case Left:
		return fmt.Sprintf(p.OnLeft, room)
	case Right:
		return fmt.Sprintf(p.OnRight, room)
	}
	return fmt.Sprintf(p.InFront, room)
}
