// Package scenarios holds the static trading-scenario registry. When the
// live news provider yields nothing, the registry doubles as the fallback
// article source for the alert pipeline.
package scenarios

import "github.com/tradequest/newsintel/internal/models"

// SourceLabel marks alerts derived from the scenario registry rather than
// live news.
const SourceLabel = "TradeQuest Scenario"

// Scenario is one canned trading scenario.
type Scenario struct {
	Slug          string
	Title         string
	Description   string
	AssetName     string
	NewsHeadline  string
	NewsBody      string
	Difficulty    string
	ActualOutcome string
	XPReward      int
	ChartDays     int
	RevealDays    int
}

var registry = []Scenario{
	{
		Slug:  "zero-day-vulnerability",
		Title: "The Zero-Day Vulnerability",
		Description: "A major cybersecurity breach rocks the tech industry. A zero-day " +
			"exploit has been discovered in enterprise defense networks, compromising " +
			"critical infrastructure worldwide. How will the market react?",
		AssetName: "CYBERFORT (CBFT)",
		NewsHeadline: "BREAKING: Major cybersecurity breach. Hackers exploit a zero-day " +
			"vulnerability, compromising enterprise defense networks.",
		NewsBody: "Security researchers have confirmed that a sophisticated threat actor " +
			"has exploited a previously unknown vulnerability in CyberFort's flagship " +
			"enterprise defense platform. The breach has affected over 2,000 organizations " +
			"globally, including Fortune 500 companies and government agencies. CyberFort's " +
			"stock is under intense scrutiny as investors assess the damage to the company's " +
			"reputation and the potential financial fallout from class-action lawsuits.",
		Difficulty:    "beginner",
		ActualOutcome: "DOWN",
		XPReward:      150,
		ChartDays:     30,
		RevealDays:    5,
	},
	{
		Slug:  "surprise-rate-cut",
		Title: "The Surprise Rate Cut",
		Description: "The central bank announces an unscheduled emergency rate cut of 50 " +
			"basis points, catching markets completely off guard. Is this a rescue or a " +
			"warning sign?",
		AssetName: "S&P 500 (SPX)",
		NewsHeadline: "Central bank delivers emergency 50bps rate cut in unscheduled " +
			"announcement, citing tightening credit conditions.",
		NewsBody: "In a move that surprised nearly every forecaster, the central bank cut " +
			"its benchmark rate by half a percentage point outside its regular meeting " +
			"schedule. Officials pointed to rapidly tightening credit conditions and " +
			"stress in regional lenders. Equity futures whipsawed in the minutes after " +
			"the announcement as traders debated whether the cut signals support for " +
			"asset prices or deeper trouble in the banking system.",
		Difficulty:    "intermediate",
		ActualOutcome: "UP",
		XPReward:      200,
		ChartDays:     30,
		RevealDays:    5,
	},
	{
		Slug:  "battery-breakthrough",
		Title: "The Battery Breakthrough",
		Description: "A leading EV manufacturer claims a solid-state battery breakthrough " +
			"that doubles range and halves cost. Hype or history in the making?",
		AssetName: "VOLTDRIVE (VLTD)",
		NewsHeadline: "VoltDrive unveils solid-state battery it says doubles EV range at " +
			"half the production cost.",
		NewsBody: "At its annual technology day, VoltDrive demonstrated a solid-state " +
			"battery cell it claims achieves twice the energy density of its current " +
			"packs while cutting cost per kilowatt-hour in half. The company says pilot " +
			"production begins next year. Analysts remain split: similar claims across " +
			"the industry have repeatedly slipped on manufacturing yield, and short " +
			"sellers note the announcement lands one week before a large debt maturity.",
		Difficulty:    "intermediate",
		ActualOutcome: "UP",
		XPReward:      200,
		ChartDays:     30,
		RevealDays:    5,
	},
	{
		Slug:  "grounded-fleet",
		Title: "The Grounded Fleet",
		Description: "A fatal design flaw grounds an airline manufacturer's best-selling " +
			"jet worldwide. Regulators, airlines, and investors scramble.",
		AssetName: "AEROMAX (AMX)",
		NewsHeadline: "Regulators ground AeroMax's flagship jet worldwide after inspectors " +
			"confirm structural flaw in wing assembly.",
		NewsBody: "Aviation authorities in three regions simultaneously ordered airlines " +
			"to ground AeroMax's best-selling narrow-body jet after inspections traced a " +
			"series of in-flight incidents to a structural defect in the wing assembly. " +
			"More than 800 aircraft are affected. Airlines are canceling thousands of " +
			"flights and signalling compensation claims, while AeroMax faces an open-ended " +
			"recertification timeline and intense scrutiny of its quality controls.",
		Difficulty:    "advanced",
		ActualOutcome: "DOWN",
		XPReward:      300,
		ChartDays:     30,
		RevealDays:    5,
	},
}

// All returns every registered scenario.
func All() []Scenario {
	out := make([]Scenario, len(registry))
	copy(out, registry)
	return out
}

// Articles converts the registry into synthetic articles for the fallback
// path. The scenario slug stands in for the external id and the asset name
// for the related-symbols string; publish time is left zero so assembly
// falls back to wall-clock time.
func Articles() []models.RawArticle {
	out := make([]models.RawArticle, 0, len(registry))
	for _, s := range registry {
		out = append(out, models.RawArticle{
			ExternalID: s.Slug,
			Headline:   s.NewsHeadline,
			Summary:    s.NewsBody,
			Source:     SourceLabel,
			Related:    s.AssetName,
		})
	}
	return out
}
