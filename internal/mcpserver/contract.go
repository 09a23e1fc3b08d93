package mcpserver

// ConventionsContract describes the documentation layout and naming
// conventions. Relationship inference is driven entirely by these
// conventions, so LLM consumers should read this before creating or
// renaming documents.
const ConventionsContract = `# Ansuz Documentation Conventions

The knowledge graph is inferred from file locations and document titles.
Follow these conventions exactly or documents will not be linked.

## Layout

` + "```" + `
docs/client_spec.md       REQUIRED singleton - the client specification
docs/project_roadmap.md   REQUIRED singleton - the phased roadmap
docs/progress.md          REQUIRED singleton - the running progress log
docs/phases/*.md          one document per phase
docs/stages/*.md          one document per stage
docs/reports/*.md         one completion report per finished stage
templates/                stage/report templates (placeholders intact)
` + "```" + `

## Titles

The display title of a document is its first level-1 heading (` + "`" + `# Title` + "`" + `);
when no heading exists, the filename stem is title-cased instead.

1. **Phase documents** must carry ` + "`" + `Phase <n>` + "`" + ` in the title,
   e.g. ` + "`" + `# Phase 2: Core Services` + "`" + `.
2. **Stage documents** must carry ` + "`" + `Stage <phase>.<stage>` + "`" + ` in the title,
   e.g. ` + "`" + `# Stage 2.1: Authentication` + "`" + `.
3. **Report titles** must contain the full stage identifier of the stage
   they complete, e.g. ` + "`" + `# Stage 2.1: Authentication - Completion Report` + "`" + `.

## Filenames

- Stage: ` + "`" + `stage<phase>_<stage>-<slug>.md` + "`" + ` (slug = name lower-cased, spaces to hyphens)
- Report: ` + "`" + `report<phase>_<stage>-<slug>.md` + "`" + `

Prefer the create_stage and create_report tools over writing these files
by hand; they apply the conventions for you.

## Inferred relations

- ` + "`" + `informs` + "`" + `: client spec -> roadmap (when both exist)
- ` + "`" + `tracks` + "`" + `: progress log -> every other document
- ` + "`" + `contains` + "`" + `: roadmap -> each phase document
- ` + "`" + `implements` + "`" + `: phase -> each stage whose title carries its number
- ` + "`" + `completed_by` + "`" + `: stage -> each report whose title carries its stage identifier

Inference never fails on a malformed title; the document simply stays
unlinked. Run sync_memory after edits to refresh the memory file and the
local index.
`
