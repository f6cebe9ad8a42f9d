// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rdm describes E-LAUTE lute recordings as InvenioRDM records and
// submits them as drafts to a research data repository.
package rdm

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pdiddy/lutetab/pkg/types"
)

const (
	projectURL = "https://e-laute.info/"
	publisher  = "E-LAUTE"
	// platformURL takes the source id and the work number.
	platformURL = "https://edition.onb.ac.at/fedora/objects/o:lau.%s/methods/sdef:TEI/get?mode=%s"
)

// DefaultContact is credited as contact person when none is configured.
var DefaultContact = types.Person{
	GivenName:       "Julia Maria",
	FamilyName:      "Jaklin",
	AffiliationID:   "04d836q62",
	AffiliationName: "TU Wien",
}

// Record is the request body for creating a draft.
type Record struct {
	Access   Access   `json:"access"`
	Files    Files    `json:"files"`
	Metadata Metadata `json:"metadata"`
}

// Access sets record and file visibility.
type Access struct {
	Record string `json:"record"`
	Files  string `json:"files"`
}

// Files declares whether the record carries files.
type Files struct {
	Enabled bool `json:"enabled"`
}

// Metadata is the descriptive part of a record.
type Metadata struct {
	Title              string              `json:"title"`
	Creators           []Creator           `json:"creators"`
	Contributors       []Creator           `json:"contributors"`
	Description        string              `json:"description"`
	PublicationDate    string              `json:"publication_date"`
	Dates              []Date              `json:"dates"`
	Publisher          string              `json:"publisher"`
	References         []Reference         `json:"references"`
	RelatedIdentifiers []RelatedIdentifier `json:"related_identifiers"`
	ResourceType       Vocabulary          `json:"resource_type"`
	Rights             []Right             `json:"rights"`
}

// Vocabulary is a controlled vocabulary entry with localized titles.
type Vocabulary struct {
	ID    string            `json:"id"`
	Title map[string]string `json:"title,omitempty"`
}

// Creator is a credited person with a role.
type Creator struct {
	Affiliations []Affiliation `json:"affiliations,omitempty"`
	PersonOrOrg  PersonOrOrg   `json:"person_or_org"`
	Role         Vocabulary    `json:"role"`
}

type Affiliation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PersonOrOrg struct {
	FamilyName string `json:"family_name"`
	GivenName  string `json:"given_name"`
	Name       string `json:"name,omitempty"`
	Type       string `json:"type"`
}

type Date struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Type        Vocabulary `json:"type"`
}

type Reference struct {
	Reference string `json:"reference"`
}

type RelatedIdentifier struct {
	Identifier   string     `json:"identifier"`
	RelationType Vocabulary `json:"relation_type"`
	ResourceType Vocabulary `json:"resource_type"`
	Scheme       string     `json:"scheme"`
}

type Right struct {
	Description map[string]string `json:"description"`
	Icon        string            `json:"icon"`
	ID          string            `json:"id"`
	Props       RightProps        `json:"props"`
	Title       map[string]string `json:"title"`
}

type RightProps struct {
	Scheme string `json:"scheme"`
	URL    string `json:"url"`
}

var (
	roleOther    = Vocabulary{ID: "other", Title: map[string]string{"en": "Other"}}
	roleProducer = Vocabulary{ID: "producer", Title: map[string]string{"en": "Producer"}}
	roleContact  = Vocabulary{ID: "contactperson", Title: map[string]string{"en": "Contact person"}}

	ccBySA = Right{
		Description: map[string]string{"en": "Permits almost any use subject to providing credit and license notice. Frequently used for media assets and educational materials. The most common license for Open Access scientific publications. Not recommended for software."},
		Icon:        "cc-by-sa-icon",
		ID:          "cc-by-sa-4.0",
		Props:       RightProps{Scheme: "spdx", URL: "https://creativecommons.org/licenses/by-sa/4.0/legalcode"},
		Title:       map[string]string{"en": "Creative Commons Attribution Share Alike 4.0 International"},
	}
)

// BuildRecord describes rec as a public record. The source is looked up in
// sources; contact is credited as contact person (DefaultContact when zero).
// now supplies the publication date.
func BuildRecord(rec Recording, sources Sources, contact types.Person, now time.Time) (Record, error) {
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	src, err := sources.Lookup(rec.SourceID)
	if err != nil {
		return Record{}, err
	}
	if contact == (types.Person{}) {
		contact = DefaultContact
	}

	performer := Creator{
		PersonOrOrg: person(rec.PerformerFirstname, rec.PerformerLastname, ""),
		Role:        roleOther,
	}
	contactPerson := Creator{
		PersonOrOrg: person(contact.GivenName, contact.FamilyName, contact.FamilyName+", "+contact.GivenName),
		Role:        roleContact,
	}
	if contact.AffiliationID != "" || contact.AffiliationName != "" {
		contactPerson.Affiliations = []Affiliation{{ID: contact.AffiliationID, Name: contact.AffiliationName}}
	}

	m := Metadata{
		Title:           fmt.Sprintf("%s (%s)", rec.Title, rec.WorkID),
		Creators:        []Creator{performer},
		Contributors:    []Creator{performer, contactPerson},
		Description:     Description(rec, src),
		PublicationDate: now.Format("2006-01-02"),
		Dates: []Date{{
			Date:        rec.Date,
			Description: "Recording date",
			Type:        Vocabulary{ID: "created", Title: map[string]string{"en": "Created"}},
		}},
		Publisher:          publisher,
		References:         []Reference{{Reference: projectURL}},
		RelatedIdentifiers: []RelatedIdentifier{},
		ResourceType:       Vocabulary{ID: "sound", Title: map[string]string{"de": "Audio", "en": "Audio"}},
		Rights:             []Right{ccBySA},
	}

	if strings.TrimSpace(rec.Producer) != "" {
		producer := Creator{
			PersonOrOrg: person(rec.ProducerFirstname, rec.ProducerLastname, rec.Producer),
			Role:        roleProducer,
		}
		m.Creators = append(m.Creators, producer)
		m.Contributors = append(m.Contributors, producer)
	}

	for _, link := range src.Links() {
		m.RelatedIdentifiers = append(m.RelatedIdentifiers, RelatedIdentifier{
			Identifier:   link,
			RelationType: Vocabulary{ID: "ispartof", Title: map[string]string{"en": "Is part of"}},
			ResourceType: Vocabulary{ID: "other", Title: map[string]string{"de": "Anderes", "en": "Other"}},
			Scheme:       "url",
		})
	}

	return Record{
		Access:   Access{Record: "public", Files: "public"},
		Files:    Files{Enabled: true},
		Metadata: m,
	}, nil
}

func person(given, family, name string) PersonOrOrg {
	return PersonOrOrg{FamilyName: family, GivenName: given, Name: name, Type: "personal"}
}

// PlatformURL links the work on the E-LAUTE edition platform.
func PlatformURL(rec Recording) string {
	return fmt.Sprintf(platformURL, rec.SourceID, rec.WorkNumber())
}

// Description renders the HTML description of a recording.
func Description(rec Recording, src Source) string {
	esc := html.EscapeString
	var b strings.Builder

	b.WriteString("<h1>Audio recording of a lute piece from the E-LAUTE project</h1><h2>Overview</h2>")
	fmt.Fprintf(&b, "<p>This dataset contains an audio recording of the piece &quot;%s&quot;, a 16th century lute music piece originally notated in lute tablature, created as part of the E-LAUTE project (%s). The recording preserves and makes historical lute music from the German-speaking regions during 1450-1550 accessible.</p>",
		esc(rec.Title), link(projectURL))
	fmt.Fprintf(&b, "<p>The recording is based on the work with the title &quot;%s&quot; and the id &quot;%s&quot; in the e-lautedb. It is found on the page(s) or folio(s) %s in the source &quot;%s&quot; with the source-id &quot;%s&quot;.</p>",
		esc(rec.Title), esc(rec.WorkID), esc(rec.FolOrP), esc(src.Title), esc(rec.SourceID))
	fmt.Fprintf(&b, "<p>The original source and multiple transcriptions of the work can be found on the E-LAUTE platform: %s.</p>",
		link(PlatformURL(rec)))

	if links := src.Links(); len(links) > 0 {
		rendered := make([]string, len(links))
		for i, l := range links {
			rendered[i] = link(l)
		}
		fmt.Fprintf(&b, "<p>Links to the source: %s.</p>", strings.Join(rendered, ", "))
	}

	b.WriteString("<h2>Dataset Contents</h2><p>This dataset includes:</p><ul>" +
		"<li><strong>Audio file</strong>: An audio recording of the lute piece in .wav format</li>" +
		"<li><strong>Metadata file</strong>: A metadata file with detailed information about the recording in .json format</li></ul>")
	b.WriteString("<h2>About the E-LAUTE Project</h2>" +
		"<p><strong>E-LAUTE: Electronic Linked Annotated Unified Tablature Edition - The Lute in the German-Speaking Area 1450-1550</strong></p>" +
		"<p>The E-LAUTE project creates innovative digital editions of lute tablatures from the German-speaking area between 1450 and 1550. This interdisciplinary &quot;open knowledge platform&quot; combines musicology, music practice, music informatics, and literary studies to transform traditional editions into collaborative research spaces.</p>")
	fmt.Fprintf(&b, "<p>For more information, visit the project website: %s</p>", link(projectURL))
	return b.String()
}

func link(url string) string {
	u := html.EscapeString(url)
	return `<a href="` + u + `" target="_blank">` + u + `</a>`
}
