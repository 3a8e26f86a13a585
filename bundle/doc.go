// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package bundle packs skills bundles into reproducible archives, keeps them
in a local OCI image layout, and feeds them to the installer.

# Archives

[PackDir] turns a bundle directory into a .tar.gz with sorted entries, a
fixed timestamp and a normalised gzip header, so the same tree always
produces the same digest. [Unpack] reverses it and refuses links, device
entries, absolute paths and paths escaping the destination.

	archive, err := bundle.PackDir(afero.NewOsFs(), ".claude/skills",
		bundle.DefaultPackOptions(&env.OSReader{}))

# Local Store

[Store] wraps an OCI image layout. [Store.Push] records an archive as a
one-layer manifest with artifact type [ArtifactTypeBundle]; [Store.Pull]
reads it back by tag or digest and checks the layer against its
descriptor. There is no remote registry access.

# Sources

[ArchiveSource] and [StoreSource] implement installer.Source, so installs
from an archive or the store get the same staging, validation and
rollback as installs from a directory.

# SKILL.md

[ParseSkillDoc] splits a SKILL.md into its YAML frontmatter and markdown
body.
*/
package bundle
