package mcpserver

// CommentSyntaxContract describes the inline comment syntax that LLM
// consumers should follow when adding comments to documents.
const CommentSyntaxContract = `# Margin Comment Syntax

Comments live inside the documents they annotate, as tagged quote blocks.

## Structure

` + "```" + `markdown
> [!alice]- The comment body's first line. (2025-01-20 14:30)
> Further body lines, quoted.
` + "```" + `

- ` + "`" + `[!alice]` + "`" + ` names the author. Only authors with a configured tag rule are
  recognized; everything else is treated as plain quoted text.
- Extraction reads header lines only: text on the header line is the comment
  body; quoted continuation lines are context for human readers.
- The tag match is case-insensitive: ` + "`" + `[!Alice]` + "`" + ` and ` + "`" + `[!alice]` + "`" + ` are the same author.
- An optional ` + "`" + `-` + "`" + ` or ` + "`" + `+` + "`" + ` after the tag folds or expands the block in
  Obsidian-style callout renderers. It does not change the meaning here.
- A timestamp in the body as ` + "`" + `(YYYY-MM-DD HH:MM)` + "`" + ` dates the comment for the
  chronological views. Comments without one sort as oldest.

## Replies

Nesting is quote depth. A reply repeats the marker one level deeper,
directly below the comment it answers:

` + "```" + `markdown
> [!alice] Is this constant still needed?
> > [!bob] Yes, the importer reads it. (2025-01-21 09:15)
` + "```" + `

Depth may increase by more than one step; the reply still attaches to the
nearest shallower comment above it.

## Rules

1. One comment per header line. The body is the text after the tag on the
   same line; a blank body renders as "Untitled".
2. Place replies immediately after their parent. A same-or-shallower depth
   line starts a new thread branch.
3. Use the ` + "`" + `add_comment` + "`" + ` tool rather than editing raw text when possible;
   it formats the block and stamps the current time.
`
