// Package domain contains core concepts of the community bot.
// This file defines fractal groups and their membership invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/samber/lo"

	"fractal-bot/errors"
)

// ThreadRef is the platform handle of a discussion thread.
type ThreadRef string

const (
	MaxGroupSize = 6
	MinGroupSize = 2
)

// Group is a bounded discussion subgroup tied to one thread.
// Member order is registration order and never changes; it breaks vote ties.
type Group struct {
	Name      string
	Owner     UserID
	Members   []UserID
	Thread    ThreadRef
	CreatedAt time.Time
	LastSeen  time.Time // last thread activity, drives cleanup
}

func NewGroup(name string, owner UserID, members []UserID, thread ThreadRef, now time.Time) (*Group, error) {
	if name == "" {
		return nil, errors.ErrEmptyGroupName
	}
	members = lo.Uniq(members)
	if len(members) < MinGroupSize {
		return nil, errors.ErrGroupTooSmall
	}
	if len(members) > MaxGroupSize {
		return nil, errors.ErrGroupFull
	}
	return &Group{
		Name:      name,
		Owner:     owner,
		Members:   members,
		Thread:    thread,
		CreatedAt: now,
		LastSeen:  now,
	}, nil
}

func (g *Group) Has(id UserID) bool {
	return lo.Contains(g.Members, id)
}

// AddMember appends a member while preserving registration order.
func (g *Group) AddMember(id UserID) error {
	if g.Has(id) {
		return errors.ErrMemberBusy
	}
	if len(g.Members) >= MaxGroupSize {
		return errors.ErrGroupFull
	}
	g.Members = append(g.Members, id)
	return nil
}

// Touch records thread activity.
func (g *Group) Touch(now time.Time) {
	if now.After(g.LastSeen) {
		g.LastSeen = now
	}
}

// IdleSince reports whether the group thread has been quiet for at least d.
func (g *Group) IdleSince(now time.Time, d time.Duration) bool {
	return now.Sub(g.LastSeen) >= d
}
