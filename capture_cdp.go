//go:build !unittest

package twitter

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// cdpRequest is what the event loop knows about an in-scope request before
// its body is available.
type cdpRequest struct {
	method string
	round  uint64
	resp   *proto.NetworkResponse
}

// startCDPCapture feeds the session buffer from the page's network events.
// Bodies are fetched in the LoadingFinished handler, so exchanges reach the
// buffer in the order their loads finished. Each request carries the buffer
// round it was sent in; a response that outlives a Drain is dropped.
func (s *Scraper) startCDPCapture() error {
	if s.page == nil {
		return ErrBrowserNotReady
	}
	if err := (proto.NetworkEnable{}).Call(s.page); err != nil {
		return fmt.Errorf("enable network domain: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	page := s.page.Context(ctx)

	// Only touched from the event loop goroutine.
	requests := map[proto.NetworkRequestID]*cdpRequest{}

	wait := page.EachEvent(func(e *proto.NetworkRequestWillBeSent) {
		if s.traffic.InScope(e.Request.URL) {
			requests[e.RequestID] = &cdpRequest{method: e.Request.Method, round: s.traffic.Round()}
		}
	}, func(e *proto.NetworkResponseReceived) {
		if req, ok := requests[e.RequestID]; ok {
			req.resp = e.Response
		}
	}, func(e *proto.NetworkLoadingFinished) {
		req, ok := requests[e.RequestID]
		delete(requests, e.RequestID)
		if !ok || req.resp == nil {
			return
		}
		s.recordCDPResponse(page, e.RequestID, req)
	}, func(e *proto.NetworkLoadingFailed) {
		delete(requests, e.RequestID)
	})
	go wait()

	s.stopCapture = cancel
	return nil
}

func (s *Scraper) recordCDPResponse(page *rod.Page, id proto.NetworkRequestID, req *cdpRequest) {
	body, err := proto.NetworkGetResponseBody{RequestID: id}.Call(page)
	if err != nil {
		s.logger.Debug("response body unavailable", zap.String("url", req.resp.URL), zap.Error(err))
		return
	}
	ex, err := cdpExchange(req.method, req.resp, body)
	if err != nil {
		s.logger.Debug("drop captured response", zap.String("url", req.resp.URL), zap.Error(err))
		return
	}
	if !s.traffic.AddInRound(req.round, ex) {
		s.logger.Debug("drop response from an earlier round", zap.String("url", ex.URL))
	}
}
