package todoist

import (
	"context"
	"fmt"

	"todoink/internal/services"
)

const resolveStage = "resolving"

// Resolution is the pair of identifiers the focus panel filters on.
type Resolution struct {
	ProjectID ID
	SectionID ID
}

// ResolveProject returns the id of the first project whose name matches
// exactly. Matching is case-sensitive and there is no fallback id.
func (c *Client) ResolveProject(ctx context.Context, name string) (ID, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	return FindProject(projects, name)
}

// ResolveSection returns the id of the first section of projectID whose name
// matches exactly.
func (c *Client) ResolveSection(ctx context.Context, projectID ID, name string) (ID, error) {
	sections, err := c.ListSections(ctx, projectID)
	if err != nil {
		return "", err
	}
	return FindSection(sections, projectID, name)
}

// Resolve looks up the project, then the section inside it.
func (c *Client) Resolve(ctx context.Context, projectName, sectionName string) (Resolution, error) {
	projectID, err := c.ResolveProject(ctx, projectName)
	if err != nil {
		return Resolution{}, err
	}
	sectionID, err := c.ResolveSection(ctx, projectID, sectionName)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{ProjectID: projectID, SectionID: sectionID}, nil
}

// FindProject scans projects for name.
func FindProject(projects []Project, name string) (ID, error) {
	for _, p := range projects {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return "", services.Wrap(services.ErrResolution, resolveStage, "find project",
		fmt.Sprintf("no project named %q among %d projects", name, len(projects)), nil)
}

// FindSection scans sections for name. Sections that report a different
// project id are ignored.
func FindSection(sections []Section, projectID ID, name string) (ID, error) {
	for _, s := range sections {
		if !s.ProjectID.IsZero() && s.ProjectID != projectID {
			continue
		}
		if s.Name == name {
			return s.ID, nil
		}
	}
	return "", services.Wrap(services.ErrResolution, resolveStage, "find section",
		fmt.Sprintf("no section named %q in project %s", name, projectID), nil)
}
