package forms

import (
	"fmt"
	"time"

	"github.com/tasksage/tasksage/pkg/core"
)

// TaskTemplate prefills the task form for a common kind of work item.
type TaskTemplate struct {
	Title       string
	Description string
	Category    string
	Priority    core.Priority
}

// TaskTemplates are the built-in task prefills, keyed by template name.
var TaskTemplates = map[string]TaskTemplate{
	"project": {
		Title:       "Project Task",
		Description: "• Define requirements\n• Create timeline\n• Assign responsibilities\n• Set milestones",
		Category:    "Project",
		Priority:    core.PriorityHigh,
	},
	"meeting": {
		Title:       "Meeting Preparation",
		Description: "• Prepare agenda\n• Send invites\n• Book conference room\n• Gather materials",
		Category:    "Meeting",
		Priority:    core.PriorityMedium,
	},
	"bug": {
		Title:       "Bug Fix",
		Description: "• Reproduce issue\n• Identify root cause\n• Implement fix\n• Test solution\n• Deploy to production",
		Category:    "Development",
		Priority:    core.PriorityHigh,
	},
	"review": {
		Title:       "Code Review",
		Description: "• Review code changes\n• Check for best practices\n• Test functionality\n• Provide feedback",
		Category:    "Development",
		Priority:    core.PriorityMedium,
	},
}

// NoteTemplate renders a Markdown scaffold with the given date interpolated.
type NoteTemplate func(now time.Time) string

// NoteTemplates are the built-in note scaffolds, keyed by template name.
var NoteTemplates = map[string]NoteTemplate{
	"meeting": func(now time.Time) string {
		return fmt.Sprintf("# Meeting Notes\n\n**Date:** %s\n**Attendees:** \n\n## Agenda\n- \n\n## Discussion Points\n- \n\n## Action Items\n- [ ] \n\n## Next Steps\n- ", now.Format("2006-01-02"))
	},
	"project": func(now time.Time) string {
		return fmt.Sprintf("# Project: [Project Name]\n\n**Start Date:** %s\n**Status:** Planning\n\n## Objectives\n- \n\n## Requirements\n- \n\n## Timeline\n- [ ] Phase 1: \n- [ ] Phase 2: \n\n## Resources\n- ", now.Format("2006-01-02"))
	},
	"daily": func(now time.Time) string {
		return fmt.Sprintf("# Daily Log - %s\n\n## Today's Goals\n- [ ] \n- [ ] \n- [ ] \n\n## Accomplishments\n- \n\n## Challenges\n- \n\n## Tomorrow's Focus\n- ", now.Format("2006-01-02"))
	},
	"research": func(now time.Time) string {
		return fmt.Sprintf("# Research Notes\n\n**Topic:** \n**Date:** %s\n**Sources:** \n\n## Key Findings\n- \n\n## Important Quotes\n> \n\n## Questions for Further Research\n- \n\n## References\n1. ", now.Format("2006-01-02"))
	},
}
