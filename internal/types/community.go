package types

// TagSet is the validated list of tags generated for a community question
type TagSet struct {
	Tags []string `json:"tags"`
}

// SynthesizedAnswer is a single answer combined from several comments
type SynthesizedAnswer struct {
	Answer string `json:"answer"`
}

// Comment is a community comment as fed to answer synthesis
type Comment struct {
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
}
