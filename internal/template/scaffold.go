package template

import (
	"fmt"
	"strings"
)

// ProjectConfig describes a project for the offline scaffold.
type ProjectConfig struct {
	ProjectName        string          `yaml:"project_name" json:"project_name"`
	ProjectDescription string          `yaml:"project_description" json:"project_description,omitempty"`
	ProjectType        string          `yaml:"project_type" json:"project_type"`
	TeamSize           string          `yaml:"team_size" json:"team_size"`
	Complexity         string          `yaml:"complexity" json:"complexity"`
	TechStack          TechStack       `yaml:"tech_stack" json:"tech_stack"`
	Commands           []Command       `yaml:"commands" json:"commands"`
	CodeStyle          CodeStyle       `yaml:"code_style" json:"code_style"`
	Structure          []Directory     `yaml:"project_structure" json:"project_structure"`
	CustomSections     []CustomSection `yaml:"custom_sections" json:"custom_sections,omitempty"`
	Restrictions       []string        `yaml:"restrictions" json:"restrictions,omitempty"`
}

// TechStack lists the main tools. Framework or Language must be set for the
// section to appear.
type TechStack struct {
	Framework      string `yaml:"framework" json:"framework"`
	Language       string `yaml:"language" json:"language"`
	Version        string `yaml:"version" json:"version,omitempty"`
	Database       string `yaml:"database" json:"database,omitempty"`
	Styling        string `yaml:"styling" json:"styling,omitempty"`
	Testing        string `yaml:"testing" json:"testing,omitempty"`
	Deployment     string `yaml:"deployment" json:"deployment,omitempty"`
	BuildTool      string `yaml:"build_tool" json:"build_tool,omitempty"`
	PackageManager string `yaml:"package_manager" json:"package_manager,omitempty"`
}

// Command is a development command and what it does.
type Command struct {
	Command     string `yaml:"command" json:"command"`
	Description string `yaml:"description" json:"description"`
}

// CodeStyle holds style rules, one bullet each.
type CodeStyle struct {
	Rules []string `yaml:"rules" json:"rules"`
}

// Directory documents one path in the project tree.
type Directory struct {
	Path        string `yaml:"path" json:"path"`
	Description string `yaml:"description" json:"description"`
}

// CustomSection is an extra free-form section.
type CustomSection struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}

// Scaffold renders a CLAUDE.md straight from cfg, without a model. Empty
// sections are left out.
func Scaffold(cfg ProjectConfig) string {
	sections := []string{
		scaffoldHeader(cfg.ProjectName, cfg.ProjectDescription),
		scaffoldTechStack(cfg.TechStack),
		bulletSection("Development Commands", cfg.Commands, func(c Command) string {
			return fmt.Sprintf("`%s`: %s", c.Command, c.Description)
		}),
		bulletSection("Code Style", cfg.CodeStyle.Rules, func(r string) string { return r }),
		bulletSection("Project Structure", cfg.Structure, func(d Directory) string {
			return fmt.Sprintf("`%s`: %s", d.Path, d.Description)
		}),
	}
	for _, cs := range cfg.CustomSections {
		sections = append(sections, fmt.Sprintf("## %s\n\n%s", cs.Title, cs.Content))
	}
	sections = append(sections, bulletSection("Do Not Touch", cfg.Restrictions, func(r string) string { return r }))

	nonEmpty := sections[:0]
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func scaffoldHeader(name, description string) string {
	header := "# " + name
	if description != "" {
		header += "\n\n" + description
	}
	return header
}

func scaffoldTechStack(ts TechStack) string {
	if ts.Framework == "" && ts.Language == "" {
		return ""
	}

	var items []string
	if ts.Framework != "" {
		fw := ts.Framework
		if ts.Version != "" {
			fw += " " + ts.Version
		}
		items = append(items, "Framework: "+fw)
	}
	for _, kv := range [][2]string{
		{"Language", ts.Language},
		{"Styling", ts.Styling},
		{"Database", ts.Database},
		{"Testing", ts.Testing},
		{"Build Tool", ts.BuildTool},
		{"Package Manager", ts.PackageManager},
		{"Deployment", ts.Deployment},
	} {
		if kv[1] != "" {
			items = append(items, kv[0]+": "+kv[1])
		}
	}
	return bulletSection("Tech Stack", items, func(s string) string { return s })
}

func bulletSection[T any](title string, items []T, format func(T) string) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + format(item)
	}
	return "## " + title + "\n" + strings.Join(lines, "\n")
}
