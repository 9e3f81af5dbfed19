package domain

// Faction is the in-universe allegiance picked at registration.
type Faction string

// The station factions of the setting. "none" is the unaffiliated default,
// "polis" is reserved for bootstrap administrators.
const (
	FactionRedline    Faction = "redline"
	FactionKitaigorod Faction = "kitaigorod"
	FactionReykh      Faction = "4reykh"
	FactionHanza      Faction = "hanza"
	FactionFree       Faction = "free"
	FactionMilitia    Faction = "militia"
	FactionSpetsnaz   Faction = "spetsnaz"
	FactionNecropolis Faction = "necropolis"
	FactionBaltic     Faction = "baltic"
	FactionLondon     Faction = "london"
	FactionDynamo     Faction = "dynamo"
	FactionPolice     Faction = "police"
	FactionDolg       Faction = "dolg"
	FactionRepublic   Faction = "republic"
	FactionTunnelers  Faction = "tunnelers"
	FactionVory       Faction = "vory"
	FactionZvezda     Faction = "zvezda"
	FactionSiberian   Faction = "siberian"
	FactionDarkness   Faction = "darkness"
	FactionLimon      Faction = "limon"
	FactionNone       Faction = "none"
	FactionPolis      Faction = "polis"
)

var factions = map[Faction]struct{}{
	FactionRedline: {}, FactionKitaigorod: {}, FactionReykh: {}, FactionHanza: {},
	FactionFree: {}, FactionMilitia: {}, FactionSpetsnaz: {}, FactionNecropolis: {},
	FactionBaltic: {}, FactionLondon: {}, FactionDynamo: {}, FactionPolice: {},
	FactionDolg: {}, FactionRepublic: {}, FactionTunnelers: {}, FactionVory: {},
	FactionZvezda: {}, FactionSiberian: {}, FactionDarkness: {}, FactionLimon: {},
	FactionNone: {}, FactionPolis: {},
}

// ValidFaction reports whether the faction is a known value.
func ValidFaction(f Faction) bool {
	_, ok := factions[f]
	return ok
}
