// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// InvolvedType discriminates what a favorite, vote, notification or transaction points at.
type InvolvedType int

const (
	InvolvedTopic InvolvedType = 0
	InvolvedReply InvolvedType = 1
)

// Valid reports whether the discriminator is one I know how to resolve.
func (t InvolvedType) Valid() bool { return t == InvolvedTopic || t == InvolvedReply }

// Vote directions stored in Vote.Status.
const (
	VoteUp   = 1
	VoteDown = -1
)

// Notification status values.
const (
	NotificationUnread = 0
	NotificationRead   = 1
)

// Transaction types recorded in the point ledger.
const (
	TransactionReward  = 1
	TransactionSpend   = 2
	TransactionRefund  = 3
	TransactionAdjust  = 4
	TransactionReplied = 5
)

// User is a forum account with profile and standing.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Signature    string    `json:"signature,omitempty"`
	Location     string    `json:"location,omitempty"`
	Website      string    `json:"website,omitempty"`
	Company      string    `json:"company,omitempty"`
	Role         int       `json:"role"`
	Balance      int       `json:"balance"`
	Reputation   int       `json:"reputation"`
	SelfIntro    string    `json:"self_intro,omitempty"`
	Twitter      string    `json:"twitter,omitempty"`
	Github       string    `json:"github,omitempty"`
	Douban       string    `json:"douban,omitempty"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// UserRef is the slice of a user I resolve alongside listings.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Plane groups nodes into top-level sections.
type Plane struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Nodes   []Node    `json:"nodes,omitempty"`
}

// PlaneRef is a lightweight reference to a plane.
type PlaneRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Node is a board topics are posted into.
// Slug, Thumb, Introduction and CustomStyle are plain text; a few hundred bytes is the expectation.
type Node struct {
	ID              int64     `json:"id"`
	PlaneID         *int64    `json:"plane_id,omitempty"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Thumb           string    `json:"thumb,omitempty"`
	Introduction    string    `json:"introduction,omitempty"`
	CustomStyle     string    `json:"custom_style,omitempty"`
	LimitReputation int       `json:"limit_reputation"`
	TopicCount      int       `json:"topic_count"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
	Plane           *PlaneRef `json:"plane,omitempty"`
}

// NodeRef is the slice of a node I resolve alongside topics.
type NodeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// HotNode is a node ranked by the replies its topics collected.
// ReplyTotal is the sum of reply_count over the node's topics.
type HotNode struct {
	Node
	ReplyTotal int `json:"reply_total"`
}

// Topic is a discussion thread. ReplyCount, UpVote, DownVote, LastRepliedByID,
// LastRepliedTime and LastTouched are cached aggregates kept in sync by the service layer.
type Topic struct {
	ID              int64      `json:"id"`
	NodeID          int64      `json:"node_id"`
	AuthorID        int64      `json:"author_id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	ContentHTML     string     `json:"content_html,omitempty"`
	Status          int        `json:"status"`
	Hits            int        `json:"hits"`
	ReplyCount      int        `json:"reply_count"`
	UpVote          int        `json:"up_vote"`
	DownVote        int        `json:"down_vote"`
	LastRepliedByID *int64     `json:"last_replied_by_id,omitempty"`
	LastRepliedTime *time.Time `json:"last_replied_time,omitempty"`
	LastTouched     time.Time  `json:"last_touched"`
	Created         time.Time  `json:"created"`
	Updated         time.Time  `json:"updated"`

	Node          *NodeRef `json:"node,omitempty"`
	Author        *UserRef `json:"author,omitempty"`
	LastRepliedBy *UserRef `json:"last_replied_by,omitempty"`
}

// TopicRef is a lightweight reference to a topic.
type TopicRef struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	NodeID int64  `json:"node_id"`
}

// Reply is a post within a topic.
type Reply struct {
	ID          int64     `json:"id"`
	TopicID     int64     `json:"topic_id"`
	AuthorID    int64     `json:"author_id"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	UpVote      int       `json:"up_vote"`
	DownVote    int       `json:"down_vote"`
	LastTouched time.Time `json:"last_touched"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`

	Author *UserRef  `json:"author,omitempty"`
	Topic  *TopicRef `json:"topic,omitempty"`
}

// Favorite is a user's bookmark of a topic or a reply.
type Favorite struct {
	ID              int64        `json:"id"`
	OwnerUserID     int64        `json:"owner_user_id"`
	InvolvedType    InvolvedType `json:"involved_type"`
	InvolvedTopicID *int64       `json:"involved_topic_id,omitempty"`
	InvolvedReplyID *int64       `json:"involved_reply_id,omitempty"`
	Created         time.Time    `json:"created"`

	Topic *Topic `json:"topic,omitempty"`
}

// Notification tells InvolvedUser that TriggerUser did something on a topic or reply.
type Notification struct {
	ID              int64        `json:"id"`
	InvolvedUserID  int64        `json:"involved_user_id"`
	TriggerUserID   *int64       `json:"trigger_user_id,omitempty"`
	InvolvedType    InvolvedType `json:"involved_type"`
	InvolvedTopicID *int64       `json:"involved_topic_id,omitempty"`
	InvolvedReplyID *int64       `json:"involved_reply_id,omitempty"`
	Content         string       `json:"content"`
	Status          int          `json:"status"`
	OccurrenceTime  time.Time    `json:"occurrence_time"`

	TriggerUser   *UserRef  `json:"trigger_user,omitempty"`
	InvolvedUser  *UserRef  `json:"involved_user,omitempty"`
	InvolvedTopic *TopicRef `json:"involved_topic,omitempty"`
}

// Transaction is a single change to a user's point balance.
type Transaction struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Type            int       `json:"type"`
	Reward          int       `json:"reward"`
	CurrentBalance  int       `json:"current_balance"`
	InvolvedUserID  *int64    `json:"involved_user_id,omitempty"`
	InvolvedTopicID *int64    `json:"involved_topic_id,omitempty"`
	InvolvedReplyID *int64    `json:"involved_reply_id,omitempty"`
	OccurrenceTime  time.Time `json:"occurrence_time"`
}

// Vote is a user's up or down vote on a topic or reply.
// InvolvedUserID is the voter, TriggerUserID the author of the voted content.
type Vote struct {
	ID              int64        `json:"id"`
	InvolvedUserID  int64        `json:"involved_user_id"`
	TriggerUserID   *int64       `json:"trigger_user_id,omitempty"`
	InvolvedType    InvolvedType `json:"involved_type"`
	InvolvedTopicID *int64       `json:"involved_topic_id,omitempty"`
	InvolvedReplyID *int64       `json:"involved_reply_id,omitempty"`
	Status          int          `json:"status"`
	OccurrenceTime  time.Time    `json:"occurrence_time"`
}
