package app

import (
	"refbot/internal/domain"
	"refbot/internal/envelope"
)

var (
	coinKeywords = []envelope.Keyword{{Name: "heads"}, {Name: "tails"}}

	deferKeywords    = []envelope.Keyword{{Name: "defer"}, {Name: "receive"}}
	overtimeKeywords = []envelope.Keyword{{Name: "defend"}, {Name: "attack"}}

	// playKeywords lists the phrases that select each play.
	playKeywords = map[domain.Play]envelope.Keyword{
		domain.PlayRun:           {Name: "run"},
		domain.PlayPass:          {Name: "pass"},
		domain.PlayPunt:          {Name: "punt"},
		domain.PlayFieldGoal:     {Name: "field goal", Aliases: []string{"field-goal"}},
		domain.PlayKneel:         {Name: "kneel"},
		domain.PlaySpike:         {Name: "spike"},
		domain.PlayPAT:           {Name: "pat"},
		domain.PlayTwoPoint:      {Name: "two point", Aliases: []string{"two-point"}},
		domain.PlayKickoffNormal: {Name: "normal"},
		domain.PlayKickoffSquib:  {Name: "squib"},
		domain.PlayKickoffOnside: {Name: "onside"},
	}

	chewPhrases  = []string{"chew the clock", "milk the clock"}
	hurryPhrases = []string{"hurry up", "hurry-up", "no huddle", "no-huddle"}
)

const timeoutKeyword = "timeout"

func keywordsFor(action domain.Action) ([]envelope.Keyword, map[string]domain.Play) {
	plays := domain.PlaysFor(action)
	keywords := make([]envelope.Keyword, 0, len(plays))
	byName := make(map[string]domain.Play, len(plays))
	for _, p := range plays {
		kw := playKeywords[p]
		keywords = append(keywords, kw)
		byName[kw.Name] = p
	}
	return keywords, byName
}
