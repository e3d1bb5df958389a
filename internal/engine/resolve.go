package engine

import "github.com/tatianab/clean-kitchen/internal/models"

// Tier is the end-of-run grade.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Rating is the label shown for a tier. It has no effect on scoring.
type Rating struct {
	Tier    Tier
	Title   string
	Message string
}

var ratings = []struct {
	max    int
	rating Rating
}{
	{35, Rating{TierA, "10x Engineer", "You see the Matrix. The code bends to your will. You clean up messes before they exist."}},
	{55, Rating{TierB, "Senior Architect", "Solid work. You know when to cut corners and when to build castles. The project survives."}},
	{85, Rating{TierC, "Spaghetti Chef", "It works... mostly. But God help the person who has to touch `legacy_utils.ts`."}},
}

var chaosAgent = Rating{TierD, "Chaos Agent", "You are the reason we have trust issues. The rot consumes all. The project is doomed."}

// RateLevel maps a final resource level to its rating. The first
// threshold that the level does not exceed wins.
func RateLevel(level int) Rating {
	for _, r := range ratings {
		if level <= r.max {
			return r.rating
		}
	}
	return chaosAgent
}

// MissingBattle is a battle the run has not answered yet. Index is its
// script position, the target for a jump.
type MissingBattle struct {
	ID    string
	Title string
	Index int
}

// Report is the verdict of a results scene. Rating is nil while battles
// are missing.
type Report struct {
	Missing []MissingBattle
	Rating  *Rating
	Level   int
}

// Complete reports whether every battle was answered.
func (r Report) Complete() bool { return len(r.Missing) == 0 }

// Resolve builds the report for st against script. It mutates nothing.
func Resolve(script *models.Script, st State) Report {
	report := Report{Level: st.ResourceLevel}
	for _, i := range script.Battles() {
		scene := script.At(i)
		if !st.Completed.Has(scene.ID) {
			report.Missing = append(report.Missing, MissingBattle{
				ID:    scene.ID,
				Title: scene.Title,
				Index: i,
			})
		}
	}
	if report.Complete() {
		r := RateLevel(st.ResourceLevel)
		report.Rating = &r
	}
	return report
}
