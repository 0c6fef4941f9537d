package git

import (
	"strings"
)

// CommitType constants for semantic commits
const (
	CommitTypeFeat  = "feat"
	CommitTypeFix   = "fix"
	CommitTypeDocs  = "docs"
	CommitTypeChore = "chore"
)

// Footer is appended to every commit made on behalf of the user.
const Footer = "Powered-by: cvpro"

// FormatCommitMessage builds a Conventional Commit message.
// logic:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Powered-by: cvpro
func FormatCommitMessage(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = CommitTypeChore
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(body))
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)

	return sb.String()
}

// AppendFooter appends the footer to an arbitrary message if not present.
// Used for free-form -m "msg" commits.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if !strings.HasSuffix(msg, "\n\n") {
		msg += "\n"
	}

	return msg + Footer
}
