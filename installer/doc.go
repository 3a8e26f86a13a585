// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package installer installs a skills bundle into a target directory so that
a failed or interrupted install never leaves the target half-written.

# Install Flow

[Installer.Install] walks four stages:

 1. Staging: the bundle is copied to a sibling of the target named
    .tmp-skills-install-<unix-ms>-<random>, and the runtime workspace
    directories are created inside it.
 2. Validating: the staged tree is checked by a [Validator]. The live
    target is never inspected.
 3. Backing up: an existing target is renamed to
    <target>.backup.<2006-01-02T15-04-05>. Otherwise the target's parent
    is created.
 4. Committing: the staged tree is renamed onto the target. This single
    rename is the only point at which the new installation becomes live.

Any failure in those stages, including a panic or a cancelled context,
restores the backup, removes the staged tree and returns a [*StageError]
wrapping the cause. If the backup cannot be restored a [*RollbackError]
naming the surviving backup is returned instead; it matches
[ErrManualIntervention] with errors.Is.

	inst := installer.New(installer.WithReporter(rep))
	res, err := inst.Install(ctx, "/opt/bundle", "/work/.claude/skills")
	if path, ok := installer.SurvivingBackup(err); ok {
		fmt.Println("previous installation kept at", path)
	}

# Validation

A tree is valid when _config/MANIFEST.json exists, parses and matches the
manifest schema, the _config, _core and _runtime directories exist, and
every manifest skill has a directory holding SKILL.md and assets/.
Manifest problems stop validation early; all other problems are reported
together in one [*IntegrityError].

# Backups

Backups are never deleted by this package. [Installer.Backups] lists them.

# Concurrency

One install per target at a time. There is no lock file; two concurrent
installs to the same target can race on the backup and commit renames.

# Progress

The package never writes to the terminal. Progress goes to a [Reporter] as
[Event] values; see [NewLogReporter] and [MultiReporter].
*/
package installer
