// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package topic namespaces messages by swarm-id and logical channel, and
// routes inbound gossip to the subsystem registered for a channel.
package topic

import "fmt"

// Protocol is the wire protocol name embedded in every topic string.
const Protocol = "openswarm"

// Version is the wire protocol version embedded in every topic string.
const Version = "1.0.0"

// Channel names one of the fixed per-swarm channels.
type Channel string

const (
	ElectionTier1   Channel = "election/tier1"
	Hierarchy       Channel = "hierarchy"
	Keepalive       Channel = "keepalive"
	SwarmAnnounce   Channel = "swarm_announce"
)

// Proposals returns the per-task proposals channel.
func Proposals(taskID string) Channel { return Channel("proposals/" + taskID) }

// Voting returns the per-task voting channel.
func Voting(taskID string) Channel { return Channel("voting/" + taskID) }

// TasksForTier returns the per-tier task announcement channel.
func TasksForTier(tier int) Channel { return Channel(fmt.Sprintf("tasks/tier%d", tier)) }

// Results returns the per-task results channel.
func Results(taskID string) Channel { return Channel("results/" + taskID) }

// String builds the full topic string `/<protocol>/1.0.0/s/<swarm_id>/<channel>`.
func String(swarmID string, ch Channel) string {
	return fmt.Sprintf("/%s/%s/s/%s/%s", Protocol, Version, swarmID, ch)
}
