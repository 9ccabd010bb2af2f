package models

import "time"

// SeedIdeas returns the sample ideas the mock repository starts with.
func SeedIdeas() []ContentIdea {
	ideas := []ContentIdea{
		{
			ID:              "1",
			Title:           "Instagram Reel about UI Design",
			Type:            TypeShortForm,
			CreativeStatus:  CreativeIdeation,
			ProductionStage: StageNotStarted,
			ReferenceLinks:  []string{"https://instagram.com/design"},
			Script: "# Instagram Reel: UI Design Tips\n\n## Intro\n- Start with showing a before/after of a UI redesign\n" +
				"- \"Want to level up your UI design skills? Let's go!\"\n\n## Tips\n1. Use consistent spacing\n" +
				"2. Limit your color palette\n3. Pay attention to alignment",
			CreatedAt: mustTime("2023-04-01T12:00:00Z"),
			UpdatedAt: mustTime("2023-04-01T14:30:00Z"),
		},
		{
			ID:              "2",
			Title:           "YouTube Tutorial: Building a Portfolio Website",
			Type:            TypeLongForm,
			CreativeStatus:  CreativeScripting,
			ProductionStage: StageNotStarted,
			ReferenceLinks:  []string{"https://youtube.com/webdev"},
			Script: "# Building a Portfolio Website Tutorial\n\n## Introduction\n- Welcome viewers\n" +
				"- Explain the importance of a portfolio\n\n## Planning Phase\n- Discuss content organization\n- Wireframes and mockups",
			CreatedAt: mustTime("2023-04-02T10:00:00Z"),
			UpdatedAt: mustTime("2023-04-03T09:15:00Z"),
		},
		{
			ID:              "3",
			Title:           "TikTok: 10 VS Code Shortcuts",
			Type:            TypeShortForm,
			CreativeStatus:  CreativeEditing,
			ProductionStage: StageShootDone,
			ReferenceLinks:  []string{"https://code.visualstudio.com/docs/getstarted/tips-and-tricks"},
			ShootFileLinks:  []string{"https://drive.google.com/file/shortcuts-raw"},
			Script: "# 10 VS Code Shortcuts Every Developer Should Know\n\n1. **Ctrl+P** - Quick Open\n" +
				"2. **Alt+Up/Down** - Move line up/down\n3. **Ctrl+/** - Toggle comment",
			CreatedAt: mustTime("2023-03-28T15:20:00Z"),
			UpdatedAt: mustTime("2023-04-05T11:45:00Z"),
		},
	}
	for i := range ideas {
		ideas[i].Normalize()
	}
	return ideas
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
