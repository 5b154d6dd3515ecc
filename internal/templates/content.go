package templates

const identityRule = `# System Identity
You are a Senior Polyglot Software Engineer and Product Architect.
- **Safety:** Never delete data without asking. Never leak secrets.
- **Context:** Always check ` + "`docs/imported`" + ` and ` + "`context/raw`" + ` before coding.
`

const securityRule = `# Security Protocols
1. **Secrets:** Never output API keys. Use ` + "`.env`" + `.
2. **Inputs:** Validate all inputs.
3. **Dependencies:** Warn if using deprecated libraries.
`

const gitRule = `# Git Conventions
- Use Conventional Commits (` + "`feat:`, `fix:`, `docs:`" + `).
- Never commit to main without testing.
`

const reasoningRule = `# Reasoning Protocol
1. **Pause:** Analyze the request.
2. **Plan:** Break it down step-by-step.
3. **Check:** Verify against ` + "`docs/`" + ` constraints.
4. **Execute:** Write code.
`

const planWorkflow = `---
trigger: /plan
---
# Plan Workflow
1. Read ` + "`docs/imported/`" + ` and ` + "`context/raw/`" + `.
2. Break request into atomic tasks.
3. Check against ` + "`.agent/rules/`" + `.
4. Output plan and update ` + "`scratchpad.md`" + `.
`

const bootstrapWorkflow = `---
trigger: /bootstrap
---
# Bootstrap Workflow
1. Read ` + "`.agent/rules/01_tech_stack.md`" + `.
2. Generate boilerplate code for the detected stack.
3. Ensure ` + "`.gitignore`" + ` is respected.
`

const commitWorkflow = `---
trigger: /commit
---
# Smart Commit
1. Run ` + "`git status`" + `.
2. Analyze diffs.
3. Generate Conventional Commit message.
4. Ask for approval.
`

const reviewWorkflow = `---
trigger: /review
---
# Code Review
1. Check for Security risks (Rule 02).
2. Check for Code Style (Rule 01).
3. Report issues sorted by severity.
`

const saveWorkflow = `---
trigger: /save
---
# Save Memory
1. Summarize recent actions.
2. Update ` + "`.agent/memory/scratchpad.md`" + `.
`

const doctorWorkflow = `---
trigger: /doctor
---
# Project Health Check
1. Run ` + "`antigravity doctor --fix`" + `.
2. Review any entries that could not be repaired.
`

const gitSkill = `---
name: git_automation
description: Safe git operations.
---
# Git Skill
**Commands:** ` + "`git status`, `git diff`, `git add`, `git commit`" + `.
**Rule:** Always verify status before adding.
`

const secretsSkill = `---
name: secrets_manager
description: Handle API keys.
---
# Secrets Skill
**Action:** Detect secrets in code. Move them to ` + "`.env`" + `. Replace with environment lookups.
`

const scratchpad = `# Project Scratchpad

## Status
- Project initialized.
- Check ` + "`.agent/rules/01_tech_stack.md`" + ` for the detected stack.
`

const bootstrapInstructions = `# Agent Start Guide
1. **Context:** Read ` + "`.agent/memory/scratchpad.md`" + `.
2. **Knowledge:** Check ` + "`docs/imported/`" + ` for assimilated rules.
3. **Action:** Run ` + "`/bootstrap`" + ` to generate the application skeleton.
`

const envExample = `API_KEY=
DB_URL=
`

const techStackRuleHeader = `# Technology Stack
Keywords Detected: %s

## Directives
1. **Inference:** Assume standard frameworks for these keywords (e.g., React implies standard hooks/components).
2. **Tooling:** Use the standard CLI tools (pip, npm, cargo, go mod).
3. **Files:** Look for ` + "`pyproject.toml`, `package.json`" + `, or similar to confirm versions.
`
