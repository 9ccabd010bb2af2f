package mcpserver

// IdeaFormatContract describes the fields of a content idea and how an
// idea is stored on disk in the vault driver.
const IdeaFormatContract = `# Socialgram Idea Format

A content idea is a planned piece of social content tracked through two
independent pipelines: creative status and production stage.

## Fields

| Field | Values |
|---|---|
| ` + "`id`" + ` | assigned on creation, never changes |
| ` + "`title`" + ` | at least 3 characters when created |
| ` + "`type`" + ` | ` + "`short-form`" + `, ` + "`long-form`" + ` |
| ` + "`creativeStatus`" + ` | ` + "`ideation`" + `, ` + "`scripting`" + `, ` + "`editing`" + `, ` + "`published`" + ` |
| ` + "`productionStage`" + ` | ` + "`not started`" + `, ` + "`shoot pending`" + `, ` + "`shoot done`" + `, ` + "`editing`" + `, ` + "`posted`" + ` |
| ` + "`script`" + ` | Markdown |
| link lists | ` + "`reference`" + `, ` + "`deployment`" + `, ` + "`shoot`" + `, ` + "`edit`" + ` (ordered, duplicates allowed) |

New ideas start as short-form, ideation, not started unless given otherwise.
Every change stamps a new ` + "`updatedAt`" + `; ` + "`createdAt`" + ` never changes.

## Vault file

Each idea is one file named ` + "`<id>.md`" + ` at the vault root. The file name
is the authoritative id.

` + "```" + `markdown
---
id: 0b7f3c1e-6a57-4a8e-9d6e-2b1f0c9a4d11
title: 'TikTok: 10 VS Code Shortcuts'
type: short-form
creative_status: editing
production_stage: shoot done
reference_links:
    - https://code.visualstudio.com/docs/getstarted/tips-and-tricks
deployment_links: []
shoot_file_links:
    - https://drive.google.com/file/shortcuts-raw
edit_file_links: []
created_at: 2023-03-28T15:20:00Z
updated_at: 2023-04-05T11:45:00Z
---
# 10 VS Code Shortcuts Every Developer Should Know

1. **Ctrl+P** - Quick Open
` + "```" + `

## Rules

1. Use the tools to change ideas rather than writing files directly.
2. Status values are lowercase and must match the table exactly.
3. Removing a link takes its zero-based position in the list.
`
