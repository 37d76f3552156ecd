package server

import "net/http"

func bridgeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(bridgeJS))
}

// bridgeJS is the dumb half of the system: it forwards DOM events up the
// socket and applies mutation commands coming back. It makes no behavioral
// decisions of its own.
const bridgeJS = `(function () {
  'use strict';
  var BRIDGE_VERSION = '1.0.0';
  var ws = null;
  var keyboardSuppressed = false;

  function send(msg) {
    if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }

  function viewport() {
    return { width: window.innerWidth, height: window.innerHeight };
  }

  function classesOf(el) {
    return el && el.classList ? Array.prototype.slice.call(el.classList) : [];
  }

  function resolveTarget(el) {
    while (el && el !== document.body) {
      if (el.id || (el.classList && el.classList.length)) return el;
      el = el.parentElement;
    }
    return null;
  }

  function tooltipAncestorId(el) {
    while (el && el !== document.body) {
      if (el.hasAttribute && el.hasAttribute('data-tooltip')) return el.id || '';
      el = el.parentElement;
    }
    return '';
  }

  function rectOf(el) {
    var r = el.getBoundingClientRect();
    return { left: r.left, top: r.top, width: r.width, height: r.height };
  }

  function pointerEvent(type, ev) {
    var target = resolveTarget(ev.target);
    if (!target) return;
    var related = resolveTarget(ev.relatedTarget);
    if (related === target) return;
    send({
      type: type,
      target_id: target.id || '',
      target_classes: classesOf(target),
      anchor_rect: rectOf(target),
      tooltip_id: tooltipAncestorId(ev.target)
    });
  }

  function currentSection() {
    var el = document.querySelector('section.present[data-section]') ||
      document.querySelector('section[data-section]');
    return el ? el.getAttribute('data-section') : '';
  }

  function apply(cmd) {
    var el = cmd.target ? document.getElementById(cmd.target) : null;
    switch (cmd.type) {
      case 'display':
        if (!el) return;
        if (cmd.visible) {
          // Laid out but invisible until a position command reveals it.
          el.style.display = 'block';
          el.style.visibility = 'hidden';
        } else {
          el.style.display = 'none';
        }
        break;
      case 'measure':
        if (!el) return;
        el.style.display = 'block';
        el.style.visibility = 'hidden';
        el.style.opacity = '0';
        send({
          type: 'measured',
          tooltip_id: cmd.target,
          measured: { width: el.offsetWidth, height: el.offsetHeight }
        });
        break;
      case 'position':
        if (!el) return;
        el.style.position = 'fixed';
        el.style.left = cmd.x + 'px';
        el.style.top = cmd.y + 'px';
        el.style.visibility = '';
        el.style.opacity = '';
        break;
      case 'frame':
        attachBackgroundFrame(cmd.agent, cmd.embed_url);
        break;
      case 'clone':
        cloneIntoPanel(cmd.agent, el);
        break;
      case 'panel':
        if (!el) return;
        el.classList.toggle('open', !!cmd.open);
        el.setAttribute('aria-hidden', cmd.open ? 'false' : 'true');
        if (cmd.open) loadLazyEmbed(el);
        break;
      case 'configure':
        keyboardSuppressed = !cmd.keyboard;
        if (window.Reveal && Reveal.configure) Reveal.configure({ keyboard: !!cmd.keyboard });
        break;
      case 'scroll':
        document.body.style.overflow = cmd.lock ? 'hidden' : '';
        break;
      case 'reload':
        location.reload();
        break;
    }
  }

  function attachBackgroundFrame(agent, url) {
    if (!agent || document.getElementById('deckhand-bg-' + agent)) return;
    var holder = document.createElement('div');
    holder.id = 'deckhand-bg-' + agent;
    holder.setAttribute('aria-hidden', 'true');
    holder.style.cssText =
      'position:fixed;width:0;height:0;overflow:hidden;pointer-events:none;z-index:-1;';
    var frame = document.createElement('iframe');
    frame.src = url;
    frame.setAttribute('data-agent', agent);
    holder.appendChild(frame);
    document.body.appendChild(holder);
  }

  function cloneIntoPanel(agent, panel) {
    if (!panel) return;
    var holder = document.getElementById('deckhand-bg-' + agent);
    var host = panel.querySelector('[data-embed-host]');
    if (!holder || !host) return;
    var frame = holder.querySelector('iframe');
    if (!frame) return;
    host.innerHTML = '';
    host.appendChild(frame.cloneNode(true));
  }

  function loadLazyEmbed(panel) {
    var frame = panel.querySelector('iframe[data-src]');
    if (frame && !frame.src) frame.src = frame.getAttribute('data-src');
  }

  document.addEventListener('pointerover', function (ev) { pointerEvent('enter', ev); });
  document.addEventListener('pointerout', function (ev) { pointerEvent('leave', ev); });
  document.addEventListener('click', function (ev) {
    var target = resolveTarget(ev.target);
    if (!target) return;
    send({
      type: 'click',
      target_id: target.id || '',
      target_classes: classesOf(target),
      tooltip_id: tooltipAncestorId(ev.target)
    });
  });
  window.addEventListener('resize', function () {
    send({ type: 'resize', viewport: viewport() });
  });
  document.addEventListener('keydown', function (ev) {
    if (!keyboardSuppressed) return;
    if (ev.key === 'Escape') {
      send({ type: 'closed' });
      return;
    }
    ev.stopPropagation();
    ev.preventDefault();
  }, true);

  if (window.Reveal && Reveal.on) {
    Reveal.on('slidechanged', function (ev) {
      var name = ev.currentSlide ? ev.currentSlide.getAttribute('data-section') : '';
      send({ type: 'section', section: name || '' });
    });
    Reveal.on('fragmentshown', function (ev) {
      send({ type: 'fragment', fragment_shown: true });
    });
    Reveal.on('fragmenthidden', function (ev) {
      send({ type: 'fragment', fragment_shown: false });
    });
  }
  document.addEventListener('deck:section', function (ev) {
    send({ type: 'section', section: (ev.detail && ev.detail.name) || '' });
  });

  function connect() {
    var scheme = location.protocol === 'https:' ? 'wss' : 'ws';
    ws = new WebSocket(scheme + '://' + location.host + '/ws');
    ws.onopen = function () {
      send({ type: 'ready', bridge_version: BRIDGE_VERSION, viewport: viewport() });
      send({ type: 'section', section: currentSection() });
    };
    ws.onmessage = function (ev) {
      var cmd;
      try { cmd = JSON.parse(ev.data); } catch (e) { return; }
      apply(cmd);
    };
  }

  connect();
})();
`
