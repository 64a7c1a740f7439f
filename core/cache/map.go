package cache

type getReq struct {
	key  string
	resp chan getResp
}

type getResp struct {
	val any
	ok  bool
}

type putReq struct {
	key string
	val any
}

// Map is an unbounded Cache. Entries stay until deleted.
type Map struct {
	getCh chan getReq
	putCh chan putReq
	delCh chan string
}

func NewMap() *Map {
	m := &Map{
		getCh: make(chan getReq),
		putCh: make(chan putReq),
		delCh: make(chan string),
	}
	go m.run()
	return m
}

func (m *Map) Get(key string) (any, bool) {
	resp := make(chan getResp)
	m.getCh <- getReq{key: key, resp: resp}
	r := <-resp
	return r.val, r.ok
}

func (m *Map) Put(key string, val any) {
	m.putCh <- putReq{key: key, val: val}
}

func (m *Map) Delete(key string) {
	m.delCh <- key
}

func (m *Map) run() {
	data := make(map[string]any)

	for {
		select {
		case req := <-m.getCh:
			val, ok := data[req.key]
			req.resp <- getResp{val: val, ok: ok}
		case req := <-m.putCh:
			data[req.key] = req.val
		case key := <-m.delCh:
			delete(data, key)
		}
	}
}

var _ Cache = (*Map)(nil)
