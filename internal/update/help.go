package update

const helpMarkdown = `# eventloom

Press ` + "`/`" + ` to open the command palette, then:

| Command | Effect |
| --- | --- |
| ` + "`add \"title\" --due 2024-06-01 09:00 [--desc text] [--every daily]`" + ` | create a task |
| ` + "`edit <id> [--all] [--title t] [--desc d] [--due date] [--every weekly, or off]`" + ` | edit one occurrence or the rest of the series |
| ` + "`done <id>`" + ` | complete; a recurring task spawns its next occurrence |
| ` + "`archive <id> [--all]`" + ` | archive without losing history |
| ` + "`cancel <id>`" + ` | cancel a pending occurrence |
| ` + "`delete <id> [--all]`" + ` | remove the task; its history stays |
| ` + "`restore <id>`" + ` | bring an archived or done task back to pending |
| ` + "`show [pending, done, archived, cancelled]`" + ` | filter the task list |
| ` + "`history [<id>]`" + ` | audit log, newest first |

Intervals: daily, weekly, fortnightly, monthly, yearly.

Keys: ` + "`t`" + ` tasks, ` + "`h`" + ` history, ` + "`d`" + ` done, ` + "`a`" + ` archive,
` + "`x`" + ` delete, ` + "`c`" + ` cancel, ` + "`r`" + ` restore, ` + "`?`" + ` toggle help, ` + "`q`" + ` quit.
`
