package scoring

import (
	"github.com/trollornot/troll-analyzer/pkg/models"
)

// The phrase lists and weight tables below are configuration data, not
// control flow. Swapping or extending a list does not touch the algorithm.

var dictionaries = map[models.SignalCategory][]string{
	models.SignalBadFaith: {
		// Sealioning / JAQing
		"just asking",
		"just a question",
		"genuine question",
		"honest question",
		"serious question",
		"define",
		"prove it",
		"source?",
		"source please",
		"citation needed",
		"where's your proof",
		"show me evidence",
		// Moving goalposts
		"that's not what i meant",
		"i never said",
		"that's not the point",
		"you're missing the point",
		"not what we're talking about",
		// Feigned ignorance
		"what do you mean",
		"i don't understand",
		"explain",
		"what are you saying",
		"huh?",
		// Debate-bro tactics
		"well technically",
		"actually",
		"to be fair",
		"but actually",
		"um actually",
		"logically",
		"objectively",
		"by definition",
	},

	models.SignalProvocation: {
		// Direct dismissals
		"cope",
		"copium",
		"seethe",
		"mald",
		"malding",
		"cry more",
		"cry about it",
		"stay mad",
		"die mad",
		"keep crying",
		"tears",
		// Mockery
		"lol",
		"lmao",
		"lmfao",
		"rofl",
		"kek",
		"haha",
		"😂",
		"🤣",
		"💀",
		"skull",
		"dead",
		"im dead",
		// Dismissive phrases
		"touch grass",
		"go outside",
		"get a life",
		"rent free",
		"living rent free",
		"imagine",
		"couldn't be me",
		"skill issue",
		"sounds like a you problem",
		"not my problem",
		"don't care",
		"nobody cares",
		"who cares",
		// Insults
		"clown",
		"🤡",
		"joke",
		"loser",
		"pathetic",
		"cringe",
		"yikes",
		"oof",
		"L take",
		"bad take",
		"trash take",
		"garbage",
		"braindead",
		"smooth brain",
		"npc",
		"bot",
		"shill",
	},

	models.SignalEngagementBait: {
		// Ratio attempts
		"ratio",
		"ratiod",
		"counter ratio",
		"self ratio",
		// Dismissals seeking reaction
		"nobody asked",
		"who asked",
		"did i ask",
		"didn't ask",
		"don't remember asking",
		"when did i ask",
		// Competitive framing
		"L",
		"W",
		"common L",
		"common W",
		"rare L",
		"rare W",
		"massive L",
		"huge L",
		"big L",
		"fat L",
		// Dismissive trends
		"mid",
		"fell off",
		"washed",
		"finished",
		"cooked",
		"done",
		"over",
		"no one cares",
		"literally no one",
		"not a single person",
		// Explicit bait
		"explain yourself",
		"i'll wait",
		"go on",
		"prove me wrong",
		"change my mind",
		"debate me",
	},

	models.SignalStrawmanning: {
		// Putting words in mouth
		"so you're saying",
		"so you think",
		"so you believe",
		"so you want",
		"so basically",
		"what you're saying is",
		"you're telling me",
		"you mean to tell me",
		// Generalization attacks
		"people like you",
		"your type",
		"you're the type",
		"you people",
		"all you guys",
		"you lot",
		// Presumption
		"let me guess",
		"i bet you",
		"you probably",
		"i'm sure you",
		"of course you",
		"typical",
		"classic",
		"predictable",
		// Sarcastic agreement
		"sure buddy",
		"sure thing",
		"right right",
		"okay sure",
		"yeah okay",
		"oh really",
		"is that so",
	},

	models.SignalDerailing: {
		// Topic change
		"anyway",
		"moving on",
		"regardless",
		"whatever",
		"doesn't matter",
		"beside the point",
		"off topic",
		"irrelevant",
		// Whataboutism
		"but what about",
		"what about",
		"whatabout",
		"yeah but",
		"ok but",
		"sure but",
		"and yet",
		// Deflection
		"that's different",
		"not the same",
		"false equivalence",
		"nice try",
		"good one",
		"not even close",
		// Dismissive exit
		"this is pointless",
		"waste of time",
		"not worth it",
		"done here",
		"i'm out",
		"bye",
		"blocked",
		"muted",
		"not reading all that",
		"tldr",
		"didn't read",
		"too long",
	},
}

// categoryWeights sum to 100, so the weighted score is bounded by 100
// before the co-occurrence bonus.
var categoryWeights = map[models.SignalCategory]float64{
	models.SignalBadFaith:       25,
	models.SignalProvocation:    25,
	models.SignalEngagementBait: 20,
	models.SignalStrawmanning:   15,
	models.SignalDerailing:      15,
}

// categoryMultipliers are tuned so a single hit in a short message
// already registers meaningfully.
var categoryMultipliers = map[models.SignalCategory]float64{
	models.SignalBadFaith:       30,
	models.SignalProvocation:    25,
	models.SignalEngagementBait: 35,
	models.SignalStrawmanning:   40,
	models.SignalDerailing:      35,
}

// CategoryDescriptions are the human-readable names used in detected
// conversation patterns.
var CategoryDescriptions = map[models.SignalCategory]string{
	models.SignalBadFaith:       "Bad faith argumentation (sealioning, moving goalposts)",
	models.SignalProvocation:    "Provocative/dismissive language",
	models.SignalEngagementBait: "Engagement bait (ratio, reactions)",
	models.SignalStrawmanning:   "Strawmanning (misrepresenting positions)",
	models.SignalDerailing:      "Derailing (topic hijacking, whataboutism)",
}

// SignalLabels are short display names for each category.
var SignalLabels = map[models.SignalCategory]string{
	models.SignalBadFaith:       "Bad Faith",
	models.SignalProvocation:    "Provocation",
	models.SignalEngagementBait: "Engagement Bait",
	models.SignalStrawmanning:   "Strawmanning",
	models.SignalDerailing:      "Derailing",
}
