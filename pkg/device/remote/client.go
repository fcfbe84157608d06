package remote

import (
	"net/rpc"

	"rectanim/pkg/proto"
)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

var _ proto.Player = (*Client)(nil)

type Client struct {
	rpc *rpc.Client
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

func (c *Client) Startup() error {
	return c.rpc.Call("Service.Command", "startup", &EmptyResponse{})
}

func (c *Client) Shutdown() error {
	return c.rpc.Call("Service.Command", "shutdown", &EmptyResponse{})
}

func (c *Client) SetLight(light uint8) error {
	return c.rpc.Call("Service.SetLight", light, &EmptyResponse{})
}

func (c *Client) Upload(stream []byte) error {
	return c.rpc.Call("Service.Upload", &UploadRequest{Stream: stream}, &EmptyResponse{})
}

func (c *Client) Play(delay uint16, loop bool) error {
	return c.rpc.Call("Service.Play", PlayRequest{Delay: delay, Loop: loop}, &EmptyResponse{})
}
