package cache

import (
	"container/list"
)

type LRUOpts struct {
	Size int
}

type entry struct {
	key string
	val any
}

// LRU is a bounded Cache evicting the least recently used entry once Size
// is exceeded.
type LRU struct {
	getCh chan getReq
	putCh chan putReq
	delCh chan string
}

func NewLRU(opts LRUOpts) *LRU {
	if opts.Size <= 0 {
		opts.Size = 128
	}

	l := &LRU{
		getCh: make(chan getReq),
		putCh: make(chan putReq),
		delCh: make(chan string),
	}
	go l.run(opts.Size)
	return l
}

func (L *LRU) Get(key string) (any, bool) {
	resp := make(chan getResp)
	L.getCh <- getReq{key: key, resp: resp}
	r := <-resp
	return r.val, r.ok
}

func (L *LRU) Put(key string, val any) {
	L.putCh <- putReq{key: key, val: val}
}

func (L *LRU) Delete(key string) {
	L.delCh <- key
}

func (L *LRU) run(size int) {
	ll := list.New()
	index := make(map[string]*list.Element)

	for {
		select {
		case req := <-L.getCh:
			if ele, ok := index[req.key]; ok {
				ll.MoveToFront(ele)
				req.resp <- getResp{val: ele.Value.(*entry).val, ok: true}
			} else {
				req.resp <- getResp{}
			}
		case req := <-L.putCh:
			if ele, ok := index[req.key]; ok {
				ll.MoveToFront(ele)
				ele.Value.(*entry).val = req.val
				continue
			}
			index[req.key] = ll.PushFront(&entry{key: req.key, val: req.val})
			if ll.Len() > size {
				if last := ll.Back(); last != nil {
					ll.Remove(last)
					delete(index, last.Value.(*entry).key)
				}
			}
		case key := <-L.delCh:
			if ele, ok := index[key]; ok {
				ll.Remove(ele)
				delete(index, key)
			}
		}
	}
}

var _ Cache = (*LRU)(nil)
