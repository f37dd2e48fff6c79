package main

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Project struct {
	Title       string
	Description string
	Image       string
	DemoLink    string
	SourceLink  string
	Categories  []string
}

type Job struct {
	Company          string
	Position         string
	Duration         string
	Description      string
	Responsibilities []string
	Technologies     []string
}

type Skill struct {
	Name     string
	Level    int
	Icon     string
	Category string
}

// Content is everything the page sections render.
type Content struct {
	Name        string
	Tagline     string
	About       template.HTML
	Experiences []Job
	Projects    []Project
	Skills      []Skill
	GitHub      string
	LinkedIn    string
	Email       string
}

var (
	AboutMe = `I love building software that's both **useful** and **fun**, and I'm always curious
about how things work behind the scenes.

Most of my projects start with a simple idea and turn into a chance to learn something new,
whether it's exploring a different language, experimenting with tools, or solving tricky problems.`

	Experiences = []Job{
		{
			Company:     "PT. Akebono Brake Astra Indonesia",
			Position:    "System Developer Intern",
			Duration:    "August 2024 - December 2024",
			Description: "Led the development of responsive web applications using Laravel and Tailwind CSS. Improved application performance by 40% through code optimization.",
			Responsibilities: []string{
				"Developed and maintained multiple Laravel-based web applications",
				"Collaborated with UX/UI designers to implement responsive designs",
				"Implemented CI/CD pipelines for automated testing and deployment",
			},
			Technologies: []string{"Laravel", "PHP", "Tailwind CSS", "Composer", "PHPUnit"},
		},
	}

	Projects = []Project{
		{
			Title:       "E-Commerce Platform",
			Description: "A full-stack e-commerce solution with secure payments and inventory management.",
			Image:       "/images/project1.jpg",
			Categories:  []string{"frontend", "backend"},
		},
		{
			Title:       "Task Management App",
			Description: "A responsive todo application with drag-and-drop functionality.",
			Image:       "/images/project2.jpg",
			Categories:  []string{"frontend"},
		},
		{
			Title:       "Company Dashboard",
			Description: "Data visualization dashboard with real-time analytics.",
			Image:       "/images/project3.jpg",
			Categories:  []string{"frontend", "data"},
		},
		{
			Title:       "Inventory API",
			Description: "RESTful API for inventory management with role-based access control.",
			Image:       "/images/project4.jpg",
			Categories:  []string{"backend", "api"},
		},
	}

	Skills = []Skill{
		{Name: "HTML & CSS", Level: 90, Icon: "🌐", Category: "frontend"},
		{Name: "JavaScript", Level: 85, Icon: "📜", Category: "frontend"},
		{Name: "Tailwind CSS", Level: 85, Icon: "🎨", Category: "frontend"},
		{Name: "Go", Level: 75, Icon: "🐹", Category: "backend"},
		{Name: "PHP", Level: 75, Icon: "🐘", Category: "backend"},
		{Name: "Laravel", Level: 70, Icon: "🔺", Category: "backend"},
		{Name: "MySQL", Level: 75, Icon: "💾", Category: "database"},
		{Name: "SQLite", Level: 70, Icon: "🪶", Category: "database"},
		{Name: "Git", Level: 80, Icon: "📂", Category: "tools"},
		{Name: "Docker", Level: 60, Icon: "🐳", Category: "tools"},
	}
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown converts trusted, compiled-in markdown to HTML.
func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// loadContent assembles the page content.
func loadContent() (Content, error) {
	about, err := renderMarkdown(AboutMe)
	if err != nil {
		return Content{}, err
	}
	return Content{
		Name:        "Farizi Adam",
		Tagline:     "I build things for the web.",
		About:       about,
		Experiences: Experiences,
		Projects:    Projects,
		Skills:      Skills,
		GitHub:      "https://github.com",
		LinkedIn:    "https://linkedin.com",
		Email:       "your.email@example.com",
	}, nil
}

// skillsByCategory groups skills preserving first-seen category order.
func skillsByCategory(skills []Skill) []SkillGroup {
	var groups []SkillGroup
	index := map[string]int{}
	for _, s := range skills {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, SkillGroup{Category: s.Category})
		}
		groups[i].Skills = append(groups[i].Skills, s)
	}
	return groups
}

// AllCategories selects every project.
const AllCategories = "all"

// projectCategories lists categories in first-seen order.
func projectCategories(projects []Project) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range projects {
		for _, c := range p.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// filterProjects keeps the projects tagged with category. AllCategories and
// the empty string keep everything.
func filterProjects(projects []Project, category string) []Project {
	if category == "" || category == AllCategories {
		return projects
	}
	var out []Project
	for _, p := range projects {
		for _, c := range p.Categories {
			if c == category {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

type SkillGroup struct {
	Category string
	Skills   []Skill
}
