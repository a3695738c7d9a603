package session

import (
	"fmt"
	"strconv"

	"jobmate/jobsearch-bot/internal/model"
)

// ReplyKind separates chat messages from short acknowledgements of an
// affordance activation.
type ReplyKind string

const (
	KindMessage ReplyKind = "message"
	KindNotice  ReplyKind = "notice"
)

// Action names an affordance. The gateway sends it back verbatim.
type Action string

const (
	ActionNextJob   Action = "next_job"
	ActionSaveJob   Action = "save_job"
	ActionNextSaved Action = "next_saved_job"
	ActionRemoveJob Action = "remove_job"
)

// User-facing texts.
const (
	MsgGreeting = "Hello!\nI will help you in job hunting!\n" +
		"Choose command /search and I will try to find suitable positions for you.\n" +
		"Or choose /review to take a look at your saved vacancies."
	MsgAskKeywords  = "Please enter the keywords of the position:"
	MsgAskLocation  = "Please enter the location:"
	MsgNoJobs       = "No jobs found."
	MsgNoMoreJobs   = "No more jobs available."
	MsgNoSaved      = "No saved jobs found."
	MsgNoMoreSaved  = "No more saved jobs."
	MsgJobSaved     = "Job saved!"
	MsgJobRemoved   = "Job removed!"
	labelNextJob    = "Next position"
	labelSaveJob    = "Save this position"
	labelNextSaved  = "Next saved job"
	labelRemoveJob  = "Remove this job"
	notAvailableTxt = "N/A"
)

// Affordance is an interactive option attached to a reply. Ref is opaque
// to the gateway.
type Affordance struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
	Ref    string `json:"ref,omitempty"`
}

// Reply is one outbound message.
type Reply struct {
	Kind        ReplyKind    `json:"kind"`
	Text        string       `json:"text"`
	Affordances []Affordance `json:"affordances,omitempty"`
}

func message(text string) Reply { return Reply{Kind: KindMessage, Text: text} }

func notice(text string) Reply { return Reply{Kind: KindNotice, Text: text} }

func listingReply(l model.Listing, ref SaveRef) Reply {
	return Reply{
		Kind: KindMessage,
		Text: renderListing(l.Title, l.Company, l.EmploymentType, l.DatePosted, l.URL),
		Affordances: []Affordance{
			{Label: labelNextJob, Action: ActionNextJob},
			{Label: labelSaveJob, Action: ActionSaveJob, Ref: ref.String()},
		},
	}
}

func savedReply(l model.SavedListing) Reply {
	return Reply{
		Kind: KindMessage,
		Text: renderListing(l.Title, l.Company, orNA(l.EmploymentType), orNA(l.DatePosted), l.URL),
		Affordances: []Affordance{
			{Label: labelNextSaved, Action: ActionNextSaved},
			{Label: labelRemoveJob, Action: ActionRemoveJob, Ref: strconv.FormatInt(l.ID, 10)},
		},
	}
}

func renderListing(title, company, employment, posted, link string) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nEmployment type: %s\nJob was posted: %s\nLink: %s",
		title, company, employment, posted, link)
}

func orNA(s string) string {
	if s == "" {
		return notAvailableTxt
	}
	return s
}

// Greeting is the reply to the start command.
func Greeting() []Reply {
	return []Reply{message(MsgGreeting)}
}
