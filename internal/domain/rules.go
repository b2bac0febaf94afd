package domain

// WinRule decides who wins once a score reaches zero
type WinRule string

const (
	// WinLastStanding awards the game to the player whose score is still positive
	WinLastStanding WinRule = "last_standing"
	// WinFirstToZero awards the game to the player who emptied their score first
	WinFirstToZero WinRule = "first_to_zero"
)

// Rules holds the tunable numbers of a game
type Rules struct {
	TurnSeconds   int     `json:"turnSeconds"`
	InitialScore  int     `json:"initialScore"`
	MinWordLength int     `json:"minWordLength"`
	TimeoutBonus  int     `json:"timeoutBonus"`
	LookupPenalty int     `json:"lookupPenalty"`
	WinRule       WinRule `json:"winRule"`
}

// DefaultRules returns the standard rules
func DefaultRules() Rules {
	return Rules{
		TurnSeconds:   15,
		InitialScore:  100,
		MinWordLength: 4,
		TimeoutBonus:  2,
		LookupPenalty: 1,
		WinRule:       WinLastStanding,
	}
}

// withDefaults fills zero values from DefaultRules
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.TurnSeconds <= 0 {
		r.TurnSeconds = d.TurnSeconds
	}
	if r.InitialScore <= 0 {
		r.InitialScore = d.InitialScore
	}
	if r.MinWordLength <= 0 {
		r.MinWordLength = d.MinWordLength
	}
	if r.TimeoutBonus < 0 {
		r.TimeoutBonus = d.TimeoutBonus
	}
	if r.LookupPenalty < 0 {
		r.LookupPenalty = d.LookupPenalty
	}
	if r.WinRule != WinFirstToZero {
		r.WinRule = WinLastStanding
	}
	return r
}
