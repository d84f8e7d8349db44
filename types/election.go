// Package types holds the data model shared by the explorer packages:
// elections and their manifests, tallies and tracked ballots, as served by
// the election backend.
package types

import "time"

// ElectionState is the lifecycle state reported by the backend.
type ElectionState string

const (
	ElectionStateNew       ElectionState = "New"
	ElectionStateOpen      ElectionState = "Open"
	ElectionStateClosed    ElectionState = "Closed"
	ElectionStatePublished ElectionState = "Published"
)

// Election is an election as listed by the backend.
type Election struct {
	ID                  string              `json:"id"`
	ElectionDescription ElectionDescription `json:"election_description"`
	State               ElectionState       `json:"state"`
	Context             *ElectionContext    `json:"context,omitempty"`
}

// ElectionContext carries the cryptographic context of the election. Only
// the fields a viewer may want to display are kept.
type ElectionContext struct {
	NumberOfGuardians int    `json:"number_of_guardians"`
	Quorum            int    `json:"quorum"`
	ElGamalPublicKey  string `json:"elgamal_public_key,omitempty"`
	CryptoBaseHash    string `json:"crypto_base_hash,omitempty"`
}

// ElectionDescription is the election manifest.
type ElectionDescription struct {
	ElectionScopeID    string                `json:"election_scope_id"`
	Type               string                `json:"type"`
	StartDate          time.Time             `json:"start_date"`
	EndDate            time.Time             `json:"end_date"`
	Name               InternationalizedText `json:"name"`
	GeopoliticalUnits  []GeopoliticalUnit    `json:"geopolitical_units,omitempty"`
	Parties            []Party               `json:"parties,omitempty"`
	Candidates         []Candidate           `json:"candidates"`
	Contests           []ContestDescription  `json:"contests"`
	BallotStyles       []BallotStyle         `json:"ballot_styles,omitempty"`
	ContactInformation *ContactInformation   `json:"contact_information,omitempty"`
}

// GeopoliticalUnit is a district, precinct or similar unit a contest belongs to.
type GeopoliticalUnit struct {
	ObjectID string `json:"object_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// Party a candidate may be affiliated with.
type Party struct {
	ObjectID     string                `json:"object_id"`
	BallotName   InternationalizedText `json:"ballot_name"`
	Abbreviation string                `json:"abbreviation,omitempty"`
	Color        string                `json:"color,omitempty"`
	LogoURI      string                `json:"logo_uri,omitempty"`
}

// Candidate is referenced by ballot selections through its ObjectID.
type Candidate struct {
	ObjectID   string                `json:"object_id"`
	BallotName InternationalizedText `json:"ballot_name"`
	PartyID    string                `json:"party_id,omitempty"`
	ImageURI   string                `json:"image_uri,omitempty"`
	IsWriteIn  bool                  `json:"is_write_in,omitempty"`
}

// ContestDescription is a single decision on the ballot.
type ContestDescription struct {
	ObjectID            string                 `json:"object_id"`
	SequenceOrder       int                    `json:"sequence_order"`
	ElectoralDistrictID string                 `json:"electoral_district_id,omitempty"`
	VoteVariation       string                 `json:"vote_variation,omitempty"`
	NumberElected       int                    `json:"number_elected"`
	VotesAllowed        int                    `json:"votes_allowed,omitempty"`
	Name                string                 `json:"name"`
	BallotTitle         InternationalizedText  `json:"ballot_title"`
	BallotSubtitle      InternationalizedText  `json:"ballot_subtitle,omitempty"`
	BallotSelections    []SelectionDescription `json:"ballot_selections"`
}

// SelectionDescription is one option of a contest, tied to a candidate.
type SelectionDescription struct {
	ObjectID      string `json:"object_id"`
	CandidateID   string `json:"candidate_id"`
	SequenceOrder int    `json:"sequence_order"`
}

// BallotStyle groups the geopolitical units sharing a ballot layout.
type BallotStyle struct {
	ObjectID            string   `json:"object_id"`
	GeopoliticalUnitIDs []string `json:"geopolitical_unit_ids,omitempty"`
	PartyIDs            []string `json:"party_ids,omitempty"`
	ImageURI            string   `json:"image_uri,omitempty"`
}

// ContactInformation of the election authority.
type ContactInformation struct {
	Name        string   `json:"name,omitempty"`
	AddressLine []string `json:"address_line,omitempty"`
	Email       []string `json:"email,omitempty"`
	Phone       []string `json:"phone,omitempty"`
}

// Contest returns the contest with the given id, if present.
func (d *ElectionDescription) Contest(contestID string) (*ContestDescription, bool) {
	for i := range d.Contests {
		if d.Contests[i].ObjectID == contestID {
			return &d.Contests[i], true
		}
	}
	return nil, false
}
