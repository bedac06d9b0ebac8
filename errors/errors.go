package errors

import "fmt"

// Validation errors: the request itself is malformed or breaks a rule.
var (
	ErrEmptyGroupName     = fmt.Errorf("group name is empty")
	ErrGroupExists        = fmt.Errorf("a group with this name already exists")
	ErrGroupTooSmall      = fmt.Errorf("a group needs at least 2 members")
	ErrGroupFull          = fmt.Errorf("group is full")
	ErrMemberBusy         = fmt.Errorf("member already belongs to an active group")
	ErrSelfVote           = fmt.Errorf("voting for yourself is not allowed")
	ErrUnknownMember      = fmt.Errorf("not a member of this group")
	ErrDurationOutOfRange = fmt.Errorf("duration must be between 1 second and 1 hour")
	ErrCooldownActive     = fmt.Errorf("respect already granted in the last 24 hours")
	ErrRateLimited        = fmt.Errorf("too many commands, slow down")
	ErrBadAddress         = fmt.Errorf("not a valid wallet address")
	ErrBadName            = fmt.Errorf("not a valid name")
	ErrAlreadyRegistered  = fmt.Errorf("already registered")
	ErrNotRegistered      = fmt.Errorf("not registered")
)

// State errors: the operation does not apply to the current state.
var (
	ErrGroupNotFound    = fmt.Errorf("group not found")
	ErrVoteInProgress   = fmt.Errorf("a vote is already running for this group")
	ErrNoActiveVote     = fmt.Errorf("no vote is running for this group")
	ErrNotYourTurn      = fmt.Errorf("not your turn to vote")
	ErrVoteClosed       = fmt.Errorf("voting is closed")
	ErrVoteIncomplete   = fmt.Errorf("voting is still in progress")
	ErrTimerNotFound    = fmt.Errorf("timer not found")
	ErrTimerNotRunning  = fmt.Errorf("timer is not running")
	ErrTimerNotPaused   = fmt.Errorf("timer is not paused")
	ErrTimerFinished    = fmt.Errorf("timer already finished")
	ErrNoFractalSession = fmt.Errorf("no fractal session for this group")
	ErrNotACandidate    = fmt.Errorf("not a candidate at this level")
	ErrNoVoiceSession   = fmt.Errorf("no open voice session for this user")
	ErrNoAddress        = fmt.Errorf("no wallet address registered")
	ErrNoDigest         = fmt.Errorf("no digest built for this thread yet")
)

// Permission errors.
var (
	ErrNotOwner      = fmt.Errorf("only the owner can do that")
	ErrNotTimerOwner = fmt.Errorf("only the timer owner can cancel it")
	ErrNotGroupOwner = fmt.Errorf("only the group owner can disband it")
)

// External dependency errors.
var (
	ErrRPCUnavailable  = fmt.Errorf("chain endpoint unavailable")
	ErrNameNotResolved = fmt.Errorf("name could not be resolved")
	ErrDigestBackend   = fmt.Errorf("digest backend failure")
)

// Runtime errors.
var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrQueueSaturated = fmt.Errorf("command queue saturated")
	ErrUnknownCommand = fmt.Errorf("unknown command")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")
	ErrOnlyPhraseDirs = fmt.Errorf("phrase directory contains directories")
	ErrEmptyPhrases   = fmt.Errorf("no phrases have been found")
)

// Ops console auth errors.
var (
	ErrBadCredentials = fmt.Errorf("bad credentials")
	ErrInvalidToken   = fmt.Errorf("invalid or expired token")
	ErrWeakPassword   = fmt.Errorf("password needs upper, lower, digit and special characters")
	ErrInvalidHash    = fmt.Errorf("stored hash is malformed")
)
