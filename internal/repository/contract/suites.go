// Package contract holds backend-agnostic repository suites. Each storage
// implementation runs them from its own tests with a factory that hands out a
// freshly migrated, empty store.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

// Repos is one storage backend seen through every contract.
type Repos struct {
	Users         repository.UserRepository
	Planes        repository.PlaneRepository
	Nodes         repository.NodeRepository
	Topics        repository.TopicRepository
	Replies       repository.ReplyRepository
	Favorites     repository.FavoriteRepository
	Notifications repository.NotificationRepository
	Transactions  repository.TransactionRepository
	Votes         repository.VoteRepository
	Tx            repository.TxManager
	Pinger        repository.Pinger
}

// Factory returns an empty store and its cleanup.
type Factory func(t *testing.T) (Repos, func())

// RunAll executes every suite against the backend.
func RunAll(t *testing.T, makeRepos Factory) {
	t.Helper()
	t.Run("users", func(t *testing.T) { RunUserRepositoryContract(t, makeRepos) })
	t.Run("planes_nodes", func(t *testing.T) { RunPlaneNodeRepositoryContract(t, makeRepos) })
	t.Run("topics", func(t *testing.T) { RunTopicRepositoryContract(t, makeRepos) })
	t.Run("replies", func(t *testing.T) { RunReplyRepositoryContract(t, makeRepos) })
	t.Run("activity", func(t *testing.T) { RunActivityRepositoryContract(t, makeRepos) })
	t.Run("tx", func(t *testing.T) { RunTxManagerContract(t, makeRepos) })
	t.Run("ping", func(t *testing.T) { RunPingerContract(t, makeRepos) })
}

// fixture seeds the rows most suites need.
type fixture struct {
	Repos
	ctx context.Context
	t   *testing.T
	seq int
}

func newFixture(t *testing.T, makeRepos Factory) *fixture {
	t.Helper()
	repos, cleanup := makeRepos(t)
	t.Cleanup(cleanup)
	return &fixture{Repos: repos, ctx: context.Background(), t: t}
}

func (f *fixture) user(name string) model.User {
	f.t.Helper()
	u, err := f.Users.Create(f.ctx, model.User{Username: name, Email: name + "@example.com", Nickname: "nick-" + name})
	if err != nil {
		f.t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func (f *fixture) node(slug string, planeID *int64) model.Node {
	f.t.Helper()
	n, err := f.Nodes.Create(f.ctx, model.Node{PlaneID: planeID, Name: "Node " + slug, Slug: slug})
	if err != nil {
		f.t.Fatalf("seed node %s: %v", slug, err)
	}
	return n
}

// topic creates a topic whose timestamps advance with every call so touch order is predictable.
func (f *fixture) topic(nodeID, authorID int64) model.Topic {
	f.t.Helper()
	f.seq++
	at := time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	tp, err := f.Topics.Create(f.ctx, model.Topic{
		NodeID: nodeID, AuthorID: authorID, Title: fmt.Sprintf("topic %d", f.seq),
		Content: "body", Created: at, LastTouched: at,
	})
	if err != nil {
		f.t.Fatalf("seed topic: %v", err)
	}
	return tp
}

func (f *fixture) reply(topicID, authorID int64) model.Reply {
	f.t.Helper()
	f.seq++
	at := time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	rp, err := f.Replies.Create(f.ctx, model.Reply{TopicID: topicID, AuthorID: authorID, Content: "re", Created: at})
	if err != nil {
		f.t.Fatalf("seed reply: %v", err)
	}
	if err := f.Topics.RecordReply(f.ctx, topicID, authorID, at); err != nil {
		f.t.Fatalf("record reply: %v", err)
	}
	return rp
}

func ids[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func topicID(t model.Topic) int64 { return t.ID }

func RunUserRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		created := f.user("alice")
		got, err := f.Users.GetByID(f.ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if diff := cmp.Diff(created, got); diff != "" {
			t.Fatalf("user mismatch (-created +got):\n%s", diff)
		}
		byName, err := f.Users.GetByUsername(f.ctx, "alice")
		if err != nil || byName.ID != created.ID {
			t.Fatalf("get by username: %+v, %v", byName, err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		if _, err := f.Users.GetByID(f.ctx, 999999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := f.Users.GetByUsername(f.ctx, "ghost"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate_username_conflict", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		f.user("dup")
		_, err := f.Users.Create(f.ctx, model.User{Username: "dup"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("adjust_balance", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("bob")
		bal, err := f.Users.AdjustBalance(f.ctx, u.ID, 25)
		if err != nil || bal != 25 {
			t.Fatalf("adjust +25: bal=%d err=%v", bal, err)
		}
		bal, err = f.Users.AdjustBalance(f.ctx, u.ID, -5)
		if err != nil || bal != 20 {
			t.Fatalf("adjust -5: bal=%d err=%v", bal, err)
		}
		if _, err := f.Users.AdjustBalance(f.ctx, 424242, 1); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunPlaneNodeRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("planes_with_nodes", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		p1, err := f.Planes.Create(f.ctx, model.Plane{Name: "Tech"})
		if err != nil {
			t.Fatalf("create plane: %v", err)
		}
		p2, err := f.Planes.Create(f.ctx, model.Plane{Name: "Life"})
		if err != nil {
			t.Fatalf("create plane: %v", err)
		}
		f.node("go", &p1.ID)
		f.node("rust", &p1.ID)
		f.node("loose", nil)

		planes, err := f.Planes.ListWithNodes(f.ctx)
		if err != nil {
			t.Fatalf("list with nodes: %v", err)
		}
		if len(planes) != 2 || planes[0].ID != p1.ID || planes[1].ID != p2.ID {
			t.Fatalf("unexpected planes: %+v", planes)
		}
		if len(planes[0].Nodes) != 2 || planes[0].Nodes[0].Slug != "go" || planes[0].Nodes[1].Slug != "rust" {
			t.Fatalf("unexpected nodes for plane 1: %+v", planes[0].Nodes)
		}
		if len(planes[1].Nodes) != 0 {
			t.Fatalf("expected no nodes for plane 2, got %d", len(planes[1].Nodes))
		}
		got, err := f.Planes.GetByID(f.ctx, p2.ID)
		if err != nil || got.Name != "Life" {
			t.Fatalf("get plane: %+v, %v", got, err)
		}
	})

	t.Run("node_lookup", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		p, err := f.Planes.Create(f.ctx, model.Plane{Name: "Tech"})
		if err != nil {
			t.Fatalf("create plane: %v", err)
		}
		n := f.node("golang", &p.ID)
		if n.Plane == nil || n.Plane.Name != "Tech" {
			t.Fatalf("plane ref not resolved: %+v", n.Plane)
		}
		bySlug, err := f.Nodes.GetBySlug(f.ctx, "golang")
		if err != nil || bySlug.ID != n.ID {
			t.Fatalf("get by slug: %+v, %v", bySlug, err)
		}
		if _, err := f.Nodes.GetBySlug(f.ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := f.Nodes.Create(f.ctx, model.Node{Name: "again", Slug: "golang"}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		byPlane, err := f.Nodes.ListByPlane(f.ctx, p.ID)
		if err != nil || len(byPlane) != 1 {
			t.Fatalf("list by plane: %d, %v", len(byPlane), err)
		}
		if err := f.Nodes.IncrementTopicCount(f.ctx, n.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
		got, _ := f.Nodes.GetByID(f.ctx, n.ID)
		if got.TopicCount != 1 {
			t.Fatalf("expected topic_count 1, got %d", got.TopicCount)
		}
	})

	t.Run("hot_nodes", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("poster")
		quiet := f.node("quiet", nil)
		busy := f.node("busy", nil)
		mid := f.node("mid", nil)
		f.topic(quiet.ID, u.ID)
		b1 := f.topic(busy.ID, u.ID)
		b2 := f.topic(busy.ID, u.ID)
		m1 := f.topic(mid.ID, u.ID)
		for i := 0; i < 2; i++ {
			f.reply(b1.ID, u.ID)
			f.reply(b2.ID, u.ID)
		}
		f.reply(m1.ID, u.ID)

		hot, err := f.Nodes.ListHot(f.ctx, 10)
		if err != nil {
			t.Fatalf("list hot: %v", err)
		}
		if len(hot) != 2 {
			t.Fatalf("expected 2 hot nodes, got %+v", hot)
		}
		if hot[0].ID != busy.ID || hot[0].ReplyTotal != 4 || hot[1].ID != mid.ID || hot[1].ReplyTotal != 1 {
			t.Fatalf("unexpected ranking: %+v", hot)
		}
		limited, err := f.Nodes.ListHot(f.ctx, 1)
		if err != nil || len(limited) != 1 || limited[0].ID != busy.ID {
			t.Fatalf("limit not honored: %+v, %v", limited, err)
		}
		if _, err := f.Nodes.ListHot(f.ctx, 0); !errors.Is(err, repository.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("hot_nodes_tie_breaks_by_id", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("poster")
		a := f.node("a", nil)
		b := f.node("b", nil)
		f.reply(f.topic(b.ID, u.ID).ID, u.ID)
		f.reply(f.topic(a.ID, u.ID).ID, u.ID)
		hot, err := f.Nodes.ListHot(f.ctx, 10)
		if err != nil {
			t.Fatalf("list hot: %v", err)
		}
		if len(hot) != 2 || hot[0].ID != a.ID || hot[1].ID != b.ID {
			t.Fatalf("expected id tie-break, got %+v", hot)
		}
	})
}

func RunTopicRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("create_and_get_resolves_refs", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		tp := f.topic(n.ID, u.ID)
		got, err := f.Topics.GetByID(f.ctx, tp.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Node == nil || got.Node.Slug != "go" {
			t.Fatalf("node not resolved: %+v", got.Node)
		}
		if got.Author == nil || got.Author.Username != "author" {
			t.Fatalf("author not resolved: %+v", got.Author)
		}
		if got.LastRepliedBy != nil || got.LastRepliedTime != nil {
			t.Fatalf("expected no last replier, got %+v", got.LastRepliedBy)
		}
		if _, err := f.Topics.GetByID(f.ctx, 987654); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("create_with_unknown_node_conflicts", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		_, err := f.Topics.Create(f.ctx, model.Topic{NodeID: 777, AuthorID: u.ID, Title: "x"})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("list_touch_order_and_pages", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		var created []int64
		for i := 0; i < 5; i++ {
			created = append(created, f.topic(n.ID, u.ID).ID)
		}

		first, err := f.Topics.List(f.ctx, repository.Page{Number: 1, Size: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := repository.PageDescriptor{Total: 5, Page: 1, Size: 2, PageCount: 3, Start: 0, End: 2, HasNext: true}
		if diff := cmp.Diff(want, first.Page); diff != "" {
			t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int64{created[4], created[3]}, ids(first.Items, topicID)); diff != "" {
			t.Fatalf("order mismatch (-want +got):\n%s", diff)
		}

		last, err := f.Topics.List(f.ctx, repository.Page{Number: 3, Size: 2})
		if err != nil {
			t.Fatalf("list last: %v", err)
		}
		if diff := cmp.Diff([]int64{created[0]}, ids(last.Items, topicID)); diff != "" {
			t.Fatalf("short last page (-want +got):\n%s", diff)
		}
		if !last.Page.HasPrevious || last.Page.HasNext {
			t.Fatalf("unexpected flags on last page: %+v", last.Page)
		}
	})

	t.Run("list_breaks_touch_ties", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		touched := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		at := func(day int) time.Time { return time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC) }
		replied := func(day int) *time.Time { v := at(day); return &v }

		seed := []struct {
			created time.Time
			replied *time.Time
		}{
			{at(1), nil},         // oldest
			{at(9), nil},         // newest
			{at(5), replied(20)}, // same created, latest reply
			{at(5), replied(10)}, // same created, earlier reply
			{at(5), nil},         // same created, never replied
			{at(5), replied(20)}, // full tie with the third row, higher id wins
		}
		var got []int64
		for i, s := range seed {
			tp, err := f.Topics.Create(f.ctx, model.Topic{
				NodeID: n.ID, AuthorID: u.ID, Title: fmt.Sprintf("tie %d", i), Content: "body",
				Created: s.created, LastTouched: touched, LastRepliedTime: s.replied,
			})
			if err != nil {
				t.Fatalf("seed topic %d: %v", i, err)
			}
			got = append(got, tp.ID)
		}
		want := []int64{got[1], got[5], got[2], got[3], got[4], got[0]}

		res, err := f.Topics.List(f.ctx, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff(want, ids(res.Items, topicID)); diff != "" {
			t.Fatalf("tie-break order mismatch (-want +got):\n%s", diff)
		}

		var paged []int64
		for page := 1; page <= 3; page++ {
			part, err := f.Topics.List(f.ctx, repository.Page{Number: page, Size: 2})
			if err != nil {
				t.Fatalf("list page %d: %v", page, err)
			}
			paged = append(paged, ids(part.Items, topicID)...)
		}
		if diff := cmp.Diff(want, paged); diff != "" {
			t.Fatalf("paged walk disagrees with single page (-want +got):\n%s", diff)
		}
	})

	t.Run("list_beyond_range_is_empty", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		for i := 0; i < 3; i++ {
			f.topic(n.ID, u.ID)
		}
		res, err := f.Topics.List(f.ctx, repository.Page{Number: 99, Size: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 0 || res.Page.Page != 1 || !res.Page.HasNext || res.Page.Total != 3 {
			t.Fatalf("unexpected out-of-range result: %+v", res)
		}
		if _, err := f.Topics.List(f.ctx, repository.Page{Number: 1, Size: 0}); !errors.Is(err, repository.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("list_is_idempotent", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		for i := 0; i < 4; i++ {
			f.reply(f.topic(n.ID, u.ID).ID, u.ID)
		}
		a, err := f.Topics.List(f.ctx, repository.Page{Number: 1, Size: 3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		b, err := f.Topics.List(f.ctx, repository.Page{Number: 1, Size: 3})
		if err != nil {
			t.Fatalf("list again: %v", err)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("listing changed between calls (-first +second):\n%s", diff)
		}
	})

	t.Run("list_by_node_slug", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		goNode := f.node("go", nil)
		other := f.node("other", nil)
		g1 := f.topic(goNode.ID, u.ID)
		f.topic(other.ID, u.ID)
		g2 := f.topic(goNode.ID, u.ID)

		res, err := f.Topics.ListByNodeSlug(f.ctx, "go", repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list by node: %v", err)
		}
		if diff := cmp.Diff([]int64{g2.ID, g1.ID}, ids(res.Items, topicID)); diff != "" {
			t.Fatalf("unexpected topics (-want +got):\n%s", diff)
		}
		empty, err := f.Topics.ListByNodeSlug(f.ctx, "missing", repository.Page{Number: 1, Size: 10})
		if err != nil || len(empty.Items) != 0 || empty.Page.Total != 0 {
			t.Fatalf("unknown slug should be an empty page: %+v, %v", empty, err)
		}
	})

	t.Run("reply_touches_topic", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		author := f.user("author")
		replier := f.user("replier")
		n := f.node("go", nil)
		older := f.topic(n.ID, author.ID)
		newer := f.topic(n.ID, author.ID)
		f.reply(older.ID, replier.ID)

		res, err := f.Topics.List(f.ctx, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]int64{older.ID, newer.ID}, ids(res.Items, topicID)); diff != "" {
			t.Fatalf("replied topic should lead (-want +got):\n%s", diff)
		}
		top := res.Items[0]
		if top.ReplyCount != 1 || top.LastRepliedBy == nil || top.LastRepliedBy.ID != replier.ID || top.LastRepliedTime == nil {
			t.Fatalf("aggregates not updated: %+v", top)
		}
		if err := f.Topics.RecordReply(f.ctx, 55555, replier.ID, time.Now()); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("by_author_and_last_created", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		other := f.user("other")
		n := f.node("go", nil)
		t1 := f.topic(n.ID, u.ID)
		f.topic(n.ID, other.ID)
		t2 := f.topic(n.ID, u.ID)

		res, err := f.Topics.ListByAuthor(f.ctx, u.ID, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list by author: %v", err)
		}
		if diff := cmp.Diff([]int64{t2.ID, t1.ID}, ids(res.Items, topicID)); diff != "" {
			t.Fatalf("unexpected topics (-want +got):\n%s", diff)
		}
		last, err := f.Topics.GetLastCreatedByAuthor(f.ctx, u.ID)
		if err != nil || last.ID != t2.ID {
			t.Fatalf("last created: %+v, %v", last, err)
		}
		if _, err := f.Topics.GetLastCreatedByAuthor(f.ctx, 31337); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("replied_by_user_is_distinct", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		author := f.user("author")
		me := f.user("me")
		n := f.node("go", nil)
		a := f.topic(n.ID, author.ID)
		b := f.topic(n.ID, author.ID)
		f.topic(n.ID, author.ID)
		f.reply(a.ID, me.ID)
		f.reply(b.ID, me.ID)
		f.reply(a.ID, me.ID)
		f.reply(b.ID, author.ID)

		res, err := f.Topics.ListRepliedByUser(f.ctx, me.ID, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list replied: %v", err)
		}
		if res.Page.Total != 2 {
			t.Fatalf("expected 2 distinct topics, got %d", res.Page.Total)
		}
		if diff := cmp.Diff([]int64{a.ID, b.ID}, ids(res.Items, topicID)); diff != "" {
			t.Fatalf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("counters", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		tp := f.topic(n.ID, u.ID)
		if err := f.Topics.IncrementHits(f.ctx, tp.ID); err != nil {
			t.Fatalf("hits: %v", err)
		}
		if err := f.Topics.ApplyVote(f.ctx, tp.ID, 2, 1); err != nil {
			t.Fatalf("vote: %v", err)
		}
		got, _ := f.Topics.GetByID(f.ctx, tp.ID)
		if got.Hits != 1 || got.UpVote != 2 || got.DownVote != 1 {
			t.Fatalf("unexpected counters: %+v", got)
		}
		if err := f.Topics.IncrementHits(f.ctx, 999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunReplyRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("list_by_topic_chronological", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		tp := f.topic(n.ID, u.ID)
		r1 := f.reply(tp.ID, u.ID)
		r2 := f.reply(tp.ID, u.ID)
		r3 := f.reply(tp.ID, u.ID)

		res, err := f.Replies.ListByTopic(f.ctx, tp.ID, repository.Page{Number: 1, Size: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]int64{r1.ID, r2.ID}, ids(res.Items, func(r model.Reply) int64 { return r.ID })); diff != "" {
			t.Fatalf("unexpected order (-want +got):\n%s", diff)
		}
		if res.Items[0].Author == nil || res.Items[0].Author.Username != "author" {
			t.Fatalf("author not resolved: %+v", res.Items[0].Author)
		}
		next, err := f.Replies.ListByTopic(f.ctx, tp.ID, repository.Page{Number: 2, Size: 2})
		if err != nil || len(next.Items) != 1 || next.Items[0].ID != r3.ID {
			t.Fatalf("second page: %+v, %v", next, err)
		}
	})

	t.Run("list_by_author_resolves_topic", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		tp := f.topic(n.ID, u.ID)
		r1 := f.reply(tp.ID, u.ID)
		r2 := f.reply(tp.ID, u.ID)

		res, err := f.Replies.ListByAuthor(f.ctx, u.ID, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]int64{r2.ID, r1.ID}, ids(res.Items, func(r model.Reply) int64 { return r.ID })); diff != "" {
			t.Fatalf("unexpected order (-want +got):\n%s", diff)
		}
		if res.Items[0].Topic == nil || res.Items[0].Topic.Title != tp.Title {
			t.Fatalf("topic not resolved: %+v", res.Items[0].Topic)
		}
	})

	t.Run("get_and_vote", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("author")
		n := f.node("go", nil)
		rp := f.reply(f.topic(n.ID, u.ID).ID, u.ID)
		if err := f.Replies.ApplyVote(f.ctx, rp.ID, 0, 1); err != nil {
			t.Fatalf("vote: %v", err)
		}
		got, err := f.Replies.GetByID(f.ctx, rp.ID)
		if err != nil || got.DownVote != 1 {
			t.Fatalf("get: %+v, %v", got, err)
		}
		if _, err := f.Replies.GetByID(f.ctx, 4040); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunActivityRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("favorites_resolve_topics", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		owner := f.user("owner")
		author := f.user("author")
		n := f.node("go", nil)
		t1 := f.topic(n.ID, author.ID)
		t2 := f.topic(n.ID, author.ID)
		for _, tp := range []model.Topic{t1, t2} {
			id := tp.ID
			if _, err := f.Favorites.Create(f.ctx, model.Favorite{OwnerUserID: owner.ID, InvolvedType: model.InvolvedTopic, InvolvedTopicID: &id}); err != nil {
				t.Fatalf("favorite: %v", err)
			}
		}
		exists, err := f.Favorites.Exists(f.ctx, owner.ID, model.InvolvedTopic, t1.ID)
		if err != nil || !exists {
			t.Fatalf("exists: %v, %v", exists, err)
		}
		exists, err = f.Favorites.Exists(f.ctx, author.ID, model.InvolvedTopic, t1.ID)
		if err != nil || exists {
			t.Fatalf("unexpected favorite: %v, %v", exists, err)
		}

		res, err := f.Favorites.ListByOwner(f.ctx, owner.ID, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 2 || res.Items[0].Topic == nil || res.Items[0].Topic.ID != t2.ID {
			t.Fatalf("unexpected favorites: %+v", res.Items)
		}
		if res.Items[1].Topic.Node == nil || res.Items[1].Topic.Author == nil || res.Items[1].Topic.Author.ID != author.ID {
			t.Fatalf("favorite topic refs not resolved: %+v", res.Items[1].Topic)
		}
	})

	t.Run("notifications", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		to := f.user("to")
		from := f.user("from")
		n := f.node("go", nil)
		tp := f.topic(n.ID, to.ID)
		for i := 0; i < 3; i++ {
			_, err := f.Notifications.Create(f.ctx, model.Notification{
				InvolvedUserID: to.ID, TriggerUserID: &from.ID, InvolvedType: model.InvolvedTopic,
				InvolvedTopicID: &tp.ID, Content: fmt.Sprintf("n%d", i),
			})
			if err != nil {
				t.Fatalf("notify: %v", err)
			}
		}
		res, err := f.Notifications.ListByRecipient(f.ctx, to.ID, repository.Page{Number: 1, Size: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 2 || res.Items[0].Content != "n2" || res.Page.PageCount != 2 {
			t.Fatalf("unexpected notifications: %+v", res)
		}
		first := res.Items[0]
		if first.TriggerUser == nil || first.TriggerUser.ID != from.ID || first.InvolvedTopic == nil || first.InvolvedUser == nil {
			t.Fatalf("refs not resolved: %+v", first)
		}
		marked, err := f.Notifications.MarkAllRead(f.ctx, to.ID)
		if err != nil || marked != 3 {
			t.Fatalf("mark read: %d, %v", marked, err)
		}
		marked, err = f.Notifications.MarkAllRead(f.ctx, to.ID)
		if err != nil || marked != 0 {
			t.Fatalf("second mark read: %d, %v", marked, err)
		}
	})

	t.Run("transactions_newest_first", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("spender")
		var last model.Transaction
		for i := 1; i <= 3; i++ {
			var err error
			last, err = f.Transactions.Create(f.ctx, model.Transaction{UserID: u.ID, Type: model.TransactionReward, Reward: i, CurrentBalance: i})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
		}
		res, err := f.Transactions.ListByUser(f.ctx, u.ID, repository.Page{Number: 1, Size: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Items[0].ID != last.ID || res.Items[0].Reward != 3 {
			t.Fatalf("unexpected transactions: %+v", res.Items)
		}
	})

	t.Run("votes_find_and_list", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		voter := f.user("voter")
		author := f.user("author")
		n := f.node("go", nil)
		tp := f.topic(n.ID, author.ID)
		if _, err := f.Votes.Find(f.ctx, voter.ID, model.InvolvedTopic, tp.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		v, err := f.Votes.Create(f.ctx, model.Vote{
			InvolvedUserID: voter.ID, TriggerUserID: &author.ID, InvolvedType: model.InvolvedTopic,
			InvolvedTopicID: &tp.ID, Status: model.VoteUp,
		})
		if err != nil {
			t.Fatalf("vote: %v", err)
		}
		found, err := f.Votes.Find(f.ctx, voter.ID, model.InvolvedTopic, tp.ID)
		if err != nil || found.ID != v.ID || found.Status != model.VoteUp {
			t.Fatalf("find: %+v, %v", found, err)
		}
		if _, err := f.Votes.Find(f.ctx, voter.ID, model.InvolvedReply, tp.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("reply vote must not match topic vote, got %v", err)
		}
		res, err := f.Votes.ListByVoter(f.ctx, voter.ID, repository.Page{Number: 1, Size: 10})
		if err != nil || len(res.Items) != 1 {
			t.Fatalf("list: %+v, %v", res, err)
		}
	})

	t.Run("one_favorite_and_vote_per_target", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		fan := f.user("fan")
		other := f.user("other")
		author := f.user("author")
		n := f.node("go", nil)
		tp := f.topic(n.ID, author.ID)
		rp := f.reply(tp.ID, author.ID)

		favTopic := model.Favorite{OwnerUserID: fan.ID, InvolvedType: model.InvolvedTopic, InvolvedTopicID: &tp.ID}
		if _, err := f.Favorites.Create(f.ctx, favTopic); err != nil {
			t.Fatalf("favorite topic: %v", err)
		}
		if _, err := f.Favorites.Create(f.ctx, favTopic); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("duplicate favorite: expected ErrAlreadyExists, got %v", err)
		}
		favReply := model.Favorite{OwnerUserID: fan.ID, InvolvedType: model.InvolvedReply, InvolvedTopicID: &tp.ID, InvolvedReplyID: &rp.ID}
		if _, err := f.Favorites.Create(f.ctx, favReply); err != nil {
			t.Fatalf("favorite reply in the same topic: %v", err)
		}
		if _, err := f.Favorites.Create(f.ctx, favReply); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("duplicate reply favorite: expected ErrAlreadyExists, got %v", err)
		}

		vote := func(voter int64, kind model.InvolvedType, reply *int64) error {
			_, err := f.Votes.Create(f.ctx, model.Vote{
				InvolvedUserID: voter, TriggerUserID: &author.ID, InvolvedType: kind,
				InvolvedTopicID: &tp.ID, InvolvedReplyID: reply, Status: model.VoteUp,
			})
			return err
		}
		if err := vote(fan.ID, model.InvolvedTopic, nil); err != nil {
			t.Fatalf("vote: %v", err)
		}
		if err := vote(fan.ID, model.InvolvedTopic, nil); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("second vote: expected ErrAlreadyExists, got %v", err)
		}
		if err := vote(other.ID, model.InvolvedTopic, nil); err != nil {
			t.Fatalf("vote by another user: %v", err)
		}
		if err := vote(fan.ID, model.InvolvedReply, &rp.ID); err != nil {
			t.Fatalf("vote on reply: %v", err)
		}
		if err := vote(fan.ID, model.InvolvedReply, &rp.ID); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("second reply vote: expected ErrAlreadyExists, got %v", err)
		}

		res, err := f.Votes.ListByVoter(f.ctx, fan.ID, repository.Page{Number: 1, Size: 10})
		if err != nil || len(res.Items) != 2 {
			t.Fatalf("votes kept: %+v, %v", res.Items, err)
		}
	})

	t.Run("empty_listings", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		u := f.user("lonely")
		p := repository.Page{Number: 1, Size: 16}
		favs, err := f.Favorites.ListByOwner(f.ctx, u.ID, p)
		if err != nil || favs.Items == nil || len(favs.Items) != 0 || favs.Page.HasNext {
			t.Fatalf("favorites: %+v, %v", favs, err)
		}
		notes, err := f.Notifications.ListByRecipient(f.ctx, u.ID, p)
		if err != nil || len(notes.Items) != 0 || notes.Page.PageCount != 0 {
			t.Fatalf("notifications: %+v, %v", notes, err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		var createdID int64
		err := f.Tx.WithinTx(f.ctx, func(ctx context.Context) error {
			out, err := f.Users.Create(ctx, model.User{Username: "tx-commit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			_, err = f.Users.AdjustBalance(ctx, out.ID, 10)
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		got, err := f.Users.GetByID(f.ctx, createdID)
		if err != nil || got.Balance != 10 {
			t.Fatalf("expected committed row visible, got %+v err=%v", got, err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		var createdID int64
		errMarker := errors.New("boom")
		err := f.Tx.WithinTx(f.ctx, func(ctx context.Context) error {
			out, err := f.Users.Create(ctx, model.User{Username: "tx-rollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := f.Users.GetByID(f.ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		errMarker := errors.New("outer failed")
		err := f.Tx.WithinTx(f.ctx, func(ctx context.Context) error {
			if err := f.Tx.WithinTx(ctx, func(ctx context.Context) error {
				_, err := f.Users.Create(ctx, model.User{Username: "inner"})
				return err
			}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := f.Users.GetByUsername(f.ctx, "inner"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("inner write should roll back with outer, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makeRepos Factory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		f := newFixture(t, makeRepos)
		if err := f.Pinger.Ping(f.ctx); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
