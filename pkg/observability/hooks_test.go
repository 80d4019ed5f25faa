package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStale(ctx, "books.csv", "invalidated")
	p.OnLoadStart(ctx, "books.csv")
	p.OnLoadComplete(ctx, "books.csv", 98, 2, time.Second, nil)
	p.OnAggregate(ctx, "top-books", 10, time.Millisecond)
	p.OnRenderStart(ctx, "trend", "svg")
	p.OnRenderComplete(ctx, "trend", "svg", 4096, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "dataset")
	c.OnCacheMiss(ctx, "view")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/charts/trend.svg")
	h.OnResponse(ctx, "GET", "/charts/trend.svg", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestSettersKeepOtherHooks(t *testing.T) {
	Reset()
	defer Reset()

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	SetPipelineHooks(&testPipelineHooks{})
	SetHTTPHooks(&testHTTPHooks{})

	if Cache() != customCache {
		t.Error("setting pipeline and HTTP hooks replaced the cache hooks")
	}
}

func TestConcurrentRegistryAccess(t *testing.T) {
	Reset()
	defer Reset()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetPipelineHooks(&testPipelineHooks{})
		}()
		go func() {
			defer wg.Done()
			Pipeline().OnLoadStart(ctx, "books.csv")
			Cache().OnCacheHit(ctx, "dataset")
		}()
	}
	wg.Wait()

	if _, ok := Pipeline().(*testPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
