package mcpserver

// NoteFormatContract describes how scrap lays notes and folders out on disk.
const NoteFormatContract = `# scrap Note Format

A workspace is a directory tree. Directories are folders, ` + "`" + `.txt` + "`" + ` files are notes.
The ` + "`" + `.trash` + "`" + ` and ` + "`" + `.cache` + "`" + ` directories are reserved.

## Notes

` + "```" + `
---
id: "<uuid>"
title: "<title>"
type: "<file type>"
---
<body>
` + "```" + `

## Folders

Each folder holds a ` + "`" + `_metadata.txt` + "`" + ` file:

` + "```" + `
id: "<uuid>"
display-name: "<display name>"
---
` + "```" + `

## Rules

1. Values are double-quoted and single-line. Everything between the first and
   last quote on a line is the value.
2. Missing fields are tolerated: the title falls back to the file name, the
   type to ` + "`" + `rich-text` + "`" + `.
3. File names are slugs of the title (lower-case a-z, 0-9 and ` + "`" + `-` + "`" + `). Clashes
   get ` + "`" + `_1` + "`" + `, ` + "`" + `_2` + "`" + `, ... appended.
4. Ids can be given in full or as their first 6 characters. A shorthand that
   matches several entities is rejected with the list of candidates.
5. Do not edit files directly while a server is running; use the tools so the
   in-memory index stays in step.
`
